package postgres

import (
	"context"
	"fmt"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	"github.com/ShakenTheCoder/REVIfinal/pkg/database"
)

// AdminActionRepository implements repository.AdminActionRepository using
// PostgreSQL. The audit trail is append-only.
type AdminActionRepository struct {
	pool database.DBTX
}

// NewAdminActionRepository creates a new PostgreSQL-backed audit repository.
func NewAdminActionRepository(pool database.DBTX) *AdminActionRepository {
	return &AdminActionRepository{pool: pool}
}

// Create appends an audit entry.
func (r *AdminActionRepository) Create(ctx context.Context, action *domain.AdminAction) error {
	query := `
		INSERT INTO admin_actions (id, admin_user, action_type, target_id,
			target_type, reason, old_value, new_value, performed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		action.ID,
		action.AdminUser,
		action.ActionType,
		action.TargetID,
		action.TargetType,
		action.Reason,
		action.OldValue,
		action.NewValue,
		action.PerformedAt,
	)
	if err != nil {
		return fmt.Errorf("create admin action: %w", err)
	}

	return nil
}

// List returns audit entries newest first with the total count.
func (r *AdminActionRepository) List(ctx context.Context, page, perPage int) ([]domain.AdminAction, int, error) {
	limit, offset := limitOffset(page, perPage)

	query := `
		SELECT id, admin_user, action_type, target_id, target_type,
		       reason, old_value, new_value, performed_at,
		       count(*) OVER() AS total
		FROM admin_actions
		ORDER BY performed_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list admin actions: %w", err)
	}
	defer rows.Close()

	var (
		actions []domain.AdminAction
		total   int
	)
	for rows.Next() {
		var a domain.AdminAction
		if err := rows.Scan(
			&a.ID,
			&a.AdminUser,
			&a.ActionType,
			&a.TargetID,
			&a.TargetType,
			&a.Reason,
			&a.OldValue,
			&a.NewValue,
			&a.PerformedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan admin action: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate admin actions: %w", err)
	}

	return actions, total, nil
}
