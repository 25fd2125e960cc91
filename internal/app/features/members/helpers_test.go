package members_test

import (
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func groupEntry(id primitive.ObjectID) models.GroupRole {
	return models.GroupRole{Group: &id, UserType: models.UserTypeGuest}
}
