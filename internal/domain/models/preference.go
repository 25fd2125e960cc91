// internal/domain/models/preference.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SelectedItem is one entry of a preference's selected_* arrays.
type SelectedItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Preference stores a user's dashboard selections within a group.
// (user_id, group_id) is unique.
type Preference struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID            primitive.ObjectID   `bson:"user_id" json:"user_id"`
	GroupID           *primitive.ObjectID  `bson:"group_id,omitempty" json:"group_id,omitempty"`
	NetworkID         *primitive.ObjectID  `bson:"network_id,omitempty" json:"network_id,omitempty"`
	Pollutant         string               `bson:"pollutant,omitempty" json:"pollutant,omitempty"`
	Frequency         string               `bson:"frequency,omitempty" json:"frequency,omitempty"`
	ChartType         string               `bson:"chartType,omitempty" json:"chartType,omitempty"`
	ChartTitle        string               `bson:"chartTitle,omitempty" json:"chartTitle,omitempty"`
	Period            map[string]any       `bson:"period,omitempty" json:"period,omitempty"`
	StartDate         *time.Time           `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate           *time.Time           `bson:"endDate,omitempty" json:"endDate,omitempty"`
	SelectedSites     []SelectedItem       `bson:"selected_sites,omitempty" json:"selected_sites,omitempty"`
	SelectedGrids     []SelectedItem       `bson:"selected_grids,omitempty" json:"selected_grids,omitempty"`
	SelectedCohorts   []SelectedItem       `bson:"selected_cohorts,omitempty" json:"selected_cohorts,omitempty"`
	SelectedDevices   []SelectedItem       `bson:"selected_devices,omitempty" json:"selected_devices,omitempty"`
	SelectedAirqlouds []SelectedItem       `bson:"selected_airqlouds,omitempty" json:"selected_airqlouds,omitempty"`
	SiteIDs           []primitive.ObjectID `bson:"site_ids,omitempty" json:"site_ids,omitempty"`
	GridIDs           []primitive.ObjectID `bson:"grid_ids,omitempty" json:"grid_ids,omitempty"`
	CohortIDs         []primitive.ObjectID `bson:"cohort_ids,omitempty" json:"cohort_ids,omitempty"`
	DeviceIDs         []primitive.ObjectID `bson:"device_ids,omitempty" json:"device_ids,omitempty"`
	AirqloudIDs       []primitive.ObjectID `bson:"airqloud_ids,omitempty" json:"airqloud_ids,omitempty"`
	NetworkIDs        []primitive.ObjectID `bson:"network_ids,omitempty" json:"network_ids,omitempty"`
	GroupIDs          []primitive.ObjectID `bson:"group_ids,omitempty" json:"group_ids,omitempty"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt" json:"updatedAt"`
}
