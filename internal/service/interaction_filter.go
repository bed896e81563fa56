package service

import "github.com/noah-isme/interaction-dashboard-api/internal/models"

// DeriveFilterOptions returns the distinct students and materials present in
// rows, in order of first appearance.
func DeriveFilterOptions(rows []models.DisplayRow) models.FilterOptions {
	options := models.FilterOptions{Students: []string{}, Materials: []string{}}
	seenStudents := make(map[string]struct{}, len(rows))
	seenMaterials := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seenStudents[row.Student]; !ok {
			seenStudents[row.Student] = struct{}{}
			options.Students = append(options.Students, row.Student)
		}
		if _, ok := seenMaterials[row.Material]; !ok {
			seenMaterials[row.Material] = struct{}{}
			options.Materials = append(options.Materials, row.Material)
		}
	}
	return options
}

// ApplyFilters keeps rows matching both the student and material selections.
// An empty selection on either dimension matches every row. The input slice
// is not modified and relative order is preserved.
func ApplyFilters(rows []models.DisplayRow, selection models.FilterSelection) []models.DisplayRow {
	students := toSet(selection.Students)
	materials := toSet(selection.Materials)
	filtered := make([]models.DisplayRow, 0, len(rows))
	for _, row := range rows {
		if students != nil {
			if _, ok := students[row.Student]; !ok {
				continue
			}
		}
		if materials != nil {
			if _, ok := materials[row.Material]; !ok {
				continue
			}
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
