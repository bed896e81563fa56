package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/interaction-dashboard-api/internal/models"
)

const interactionSelect = `SELECT mi.material_interaction_id, mi.start, mi."end",
        p.short_name AS person_short_name, m.name AS material_name
        FROM material_interactions mi
        LEFT JOIN persons p ON p.person_id = mi.person_id
        LEFT JOIN materials m ON m.material_id = mi.material_id
        WHERE mi.start >= $1 AND mi.start <= $2`

// InteractionRepository reads material interactions from the warehouse database.
type InteractionRepository struct {
	db *sqlx.DB
}

// NewInteractionRepository instantiates the repository.
func NewInteractionRepository(db *sqlx.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// FetchInteractions returns interactions starting inside the query window, ordered by start.
func (r *InteractionRepository) FetchInteractions(ctx context.Context, query models.InteractionQuery) ([]models.InteractionRecord, error) {
	var builder strings.Builder
	builder.WriteString(interactionSelect)
	args := []interface{}{query.Start, query.End}
	if len(query.PersonIDs) > 0 {
		args = append(args, pq.Array(query.PersonIDs))
		builder.WriteString(fmt.Sprintf(" AND mi.person_id = ANY($%d)", len(args)))
	}
	if len(query.MaterialIDs) > 0 {
		args = append(args, pq.Array(query.MaterialIDs))
		builder.WriteString(fmt.Sprintf(" AND mi.material_id = ANY($%d)", len(args)))
	}
	builder.WriteString(" ORDER BY mi.start ASC")

	var records []models.InteractionRecord
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query material interactions: %w", err)
	}
	return records, nil
}
