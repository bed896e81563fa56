package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/interaction-dashboard-api/internal/models"
)

var filterFixture = []models.DisplayRow{
	{Student: "Ann", Material: "Globe", Day: "Mon", Start: "09:00 AM"},
	{Student: "Ben", Material: "Bells", Day: "Mon", Start: "09:10 AM"},
	{Student: "Ann", Material: "Bells", Day: "Tue", Start: "10:00 AM"},
	{Student: "Cy", Material: "Globe", Day: "Wed", Start: "11:00 AM"},
}

func TestDeriveFilterOptionsFirstAppearanceOrder(t *testing.T) {
	options := DeriveFilterOptions(filterFixture)
	assert.Equal(t, []string{"Ann", "Ben", "Cy"}, options.Students)
	assert.Equal(t, []string{"Globe", "Bells"}, options.Materials)
}

func TestDeriveFilterOptionsEmpty(t *testing.T) {
	options := DeriveFilterOptions(nil)
	assert.NotNil(t, options.Students)
	assert.NotNil(t, options.Materials)
	assert.Empty(t, options.Students)
	assert.Empty(t, options.Materials)
}

func TestApplyFilters(t *testing.T) {
	cases := []struct {
		name      string
		selection models.FilterSelection
		want      []string
	}{
		{name: "no selection keeps everything", want: []string{"09:00 AM", "09:10 AM", "10:00 AM", "11:00 AM"}},
		{name: "students only", selection: models.FilterSelection{Students: []string{"Ann"}}, want: []string{"09:00 AM", "10:00 AM"}},
		{name: "materials only", selection: models.FilterSelection{Materials: []string{"Globe"}}, want: []string{"09:00 AM", "11:00 AM"}},
		{name: "both dimensions intersect", selection: models.FilterSelection{Students: []string{"Ann", "Ben"}, Materials: []string{"Bells"}}, want: []string{"09:10 AM", "10:00 AM"}},
		{name: "unknown value matches nothing", selection: models.FilterSelection{Students: []string{"Zed"}}, want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := ApplyFilters(filterFixture, tc.selection)
			starts := make([]string, 0, len(rows))
			for _, row := range rows {
				starts = append(starts, row.Start)
			}
			assert.Equal(t, tc.want, starts)
		})
	}
}

func TestApplyFiltersDoesNotMutateInput(t *testing.T) {
	input := append([]models.DisplayRow(nil), filterFixture...)
	_ = ApplyFilters(input, models.FilterSelection{Students: []string{"Cy"}})
	assert.Equal(t, filterFixture, input)
}
