// internal/app/store/preferences/preferencestore.go
package preferencestore

import (
	"context"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store/entity"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds one document per (user, group).
const Collection = "preferences"

var def = entity.Def{
	Collection: Collection,
	Noun:       "preference",
	Plural:     "preferences",
	UniqueKeys: []string{"user_id", "group_id"},
	Immutable:  []string{"user_id", "createdAt"},
}

type Store struct {
	e *entity.Store[models.Preference]
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	e := entity.New[models.Preference](db, def)
	return &Store{e: e, c: e.Collection()}
}

// Create inserts p, stamping createdAt on selected items that lack one.
func (s *Store) Create(ctx context.Context, p models.Preference) result.Result[models.Preference] {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	stampSelected(&p, now)
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.e.Register(ctx, p)
}

func (s *Store) List(ctx context.Context, filter bson.M, page paging.Page) result.Result[[]models.Preference] {
	return s.e.List(ctx, filter, page)
}

func (s *Store) Update(ctx context.Context, filter, update bson.M) result.Result[models.Preference] {
	return s.e.Modify(ctx, filter, update)
}

func (s *Store) Remove(ctx context.Context, filter bson.M) result.Result[models.Preference] {
	return s.e.Remove(ctx, filter)
}

// Upsert merges p into the preference matching filter, creating it when
// absent. Scalar settings are overwritten; id sets and selected_* arrays
// are merged with $addToSet $each.
func (s *Store) Upsert(ctx context.Context, filter bson.M, p models.Preference) result.Result[models.Preference] {
	if _, ok := filter["user_id"]; !ok {
		return result.BadRequest[models.Preference]("the user_id is required to upsert a preference")
	}
	now := time.Now().UTC()
	stampSelected(&p, now)

	set := bson.M{"updatedAt": now}
	setIf := func(k string, present bool, v any) {
		if present {
			set[k] = v
		}
	}
	setIf("network_id", p.NetworkID != nil, p.NetworkID)
	setIf("pollutant", p.Pollutant != "", p.Pollutant)
	setIf("frequency", p.Frequency != "", p.Frequency)
	setIf("chartType", p.ChartType != "", p.ChartType)
	setIf("chartTitle", p.ChartTitle != "", p.ChartTitle)
	setIf("period", p.Period != nil, p.Period)
	setIf("startDate", p.StartDate != nil, p.StartDate)
	setIf("endDate", p.EndDate != nil, p.EndDate)

	add := bson.M{}
	addIDs := func(k string, ids []primitive.ObjectID) {
		if len(ids) > 0 {
			add[k] = bson.M{"$each": ids}
		}
	}
	addIDs("site_ids", p.SiteIDs)
	addIDs("grid_ids", p.GridIDs)
	addIDs("cohort_ids", p.CohortIDs)
	addIDs("device_ids", p.DeviceIDs)
	addIDs("airqloud_ids", p.AirqloudIDs)
	addIDs("network_ids", p.NetworkIDs)
	addIDs("group_ids", p.GroupIDs)
	addItems := func(k string, items []models.SelectedItem) {
		if len(items) > 0 {
			add[k] = bson.M{"$each": items}
		}
	}
	addItems("selected_sites", p.SelectedSites)
	addItems("selected_grids", p.SelectedGrids)
	addItems("selected_cohorts", p.SelectedCohorts)
	addItems("selected_devices", p.SelectedDevices)
	addItems("selected_airqlouds", p.SelectedAirqlouds)

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}
	if len(add) > 0 {
		update["$addToSet"] = add
	}

	var out models.Preference
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return entity.Conflict[models.Preference](err, def.UniqueKeys)
		}
		return result.Internal[models.Preference](err)
	}
	return result.OK("successfully created or updated a preference", out)
}

func stampSelected(p *models.Preference, now time.Time) {
	for _, items := range [][]models.SelectedItem{
		p.SelectedSites, p.SelectedGrids, p.SelectedCohorts, p.SelectedDevices, p.SelectedAirqlouds,
	} {
		for i := range items {
			if items[i].CreatedAt.IsZero() {
				items[i].CreatedAt = now
			}
		}
	}
}
