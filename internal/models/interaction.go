package models

import "time"

// InteractionRecord is one logged event of a student using a material, as
// returned by the upstream analytics source. Names are nil when the upstream
// record has no linked person or material.
type InteractionRecord struct {
	ID           string     `db:"material_interaction_id" json:"material_interaction_id"`
	Start        time.Time  `db:"start" json:"start"`
	End          *time.Time `db:"end" json:"end,omitempty"`
	StudentName  *string    `db:"person_short_name" json:"person_short_name,omitempty"`
	MaterialName *string    `db:"material_name" json:"material_name,omitempty"`
}

// InteractionQuery scopes a fetch against the interaction source. The ID
// filters exist on the upstream API; the dashboard always leaves them empty
// so filter options reflect the whole window.
type InteractionQuery struct {
	Start       time.Time
	End         time.Time
	PersonIDs   []string
	MaterialIDs []string
}

// DisplayRow is the five-column projection shown in the dashboard table.
type DisplayRow struct {
	Student  string `json:"Student"`
	Material string `json:"Material"`
	Day      string `json:"Day"`
	Start    string `json:"Start"`
	End      string `json:"End"`
}

// FilterSelection holds the user-selected students and materials. An empty
// dimension places no constraint on the rows.
type FilterSelection struct {
	Students  []string
	Materials []string
}

// FilterOptions lists the distinct students and materials present in a window.
type FilterOptions struct {
	Students  []string `json:"studentOptions"`
	Materials []string `json:"materialOptions"`
}
