package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OperationStatus tracks the lifecycle of a logged admin operation.
type OperationStatus string

const (
	OperationRunning OperationStatus = "running"
	OperationSuccess OperationStatus = "success"
	OperationFailed  OperationStatus = "failed"
)

// Operation is one entry in the admin operation log. Mutating admin actions
// (table and record changes, exports, backups) are recorded; reads are not.
type Operation struct {
	ID          string
	Name        string
	TargetTable string
	Detail      string
	Status      OperationStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// BeginOperation records the start of an admin operation.
func (s *Store) BeginOperation(ctx context.Context, name, targetTable, detail string) (*Operation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	op := &Operation{
		ID:          generateID(),
		Name:        name,
		TargetTable: targetTable,
		Detail:      detail,
		Status:      OperationRunning,
		StartedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admin_log (id, operation, target_table, detail, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		op.ID, op.Name, op.TargetTable, op.Detail, op.Status, op.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record operation: %w", err)
	}

	return op, nil
}

// CompleteOperation marks a logged operation as finished.
func (s *Store) CompleteOperation(ctx context.Context, id string, status OperationStatus, errMsg string) error {
	if err := s.ready(); err != nil {
		return err
	}

	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE admin_log SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		status, time.Now().UTC(), errorPtr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete operation: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("%w: operation %s", ErrRecordNotFound, id)
	}
	return nil
}

// RecentOperations returns the newest entries of the operation log, most
// recent first.
func (s *Store) RecentOperations(ctx context.Context, limit int) ([]*Operation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, operation, target_table, detail, status, started_at, completed_at, error
		 FROM admin_log ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer rows.Close()

	var ops []*Operation
	for rows.Next() {
		op := &Operation{}
		var target, detail, errMsg sql.NullString
		var completedAt sql.NullTime

		err := rows.Scan(&op.ID, &op.Name, &target, &detail, &op.Status, &op.StartedAt, &completedAt, &errMsg)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}

		op.TargetTable = target.String
		op.Detail = detail.String
		if completedAt.Valid {
			op.CompletedAt = &completedAt.Time
		}
		if errMsg.Valid {
			op.Error = errMsg.String
		}
		ops = append(ops, op)
	}

	return ops, rows.Err()
}
