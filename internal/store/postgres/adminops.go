package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/regpulse-io/regpulse/pkg/types"
)

// AppendAdminOperation inserts one audit trail row. The trail is append-only;
// rows are never updated or deleted by this service.
func (s *Store) AppendAdminOperation(ctx context.Context, op types.AdminOperation) error {
	detailsJSON, err := json.Marshal(op.Details)
	if err != nil {
		return fmt.Errorf("marshal operation details: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO admin_operations (operation_type, performed_by, details, created_at)
		VALUES ($1, $2, $3, $4)
	`, op.OperationType, op.PerformedBy, detailsJSON, op.CreatedAt)
	return err
}

// ListAdminOperations returns recent audit rows, newest first.
func (s *Store) ListAdminOperations(ctx context.Context, limit int) ([]types.AdminOperation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, operation_type, performed_by, details, created_at
		FROM admin_operations
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []types.AdminOperation
	for rows.Next() {
		var op types.AdminOperation
		var id int64
		var details []byte
		if err := rows.Scan(&id, &op.OperationType, &op.PerformedBy, &details, &op.CreatedAt); err != nil {
			return nil, err
		}
		op.ID = strconv.FormatInt(id, 10)
		if len(details) > 0 {
			_ = json.Unmarshal(details, &op.Details)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}
