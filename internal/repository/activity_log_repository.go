package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"storefront-admin/internal/domain"
)

const (
	DefaultActivityLimit = 100
	maxActivityLimit     = 500
)

// ActivityLogRepository defines the interface for activity log data access
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
	ListRecent(ctx context.Context, limit int) ([]*domain.ActivityLog, error)
	ListByResource(ctx context.Context, resourceType, resourceID string, limit int) ([]*domain.ActivityLog, error)
}

type activityLogRepository struct {
	db *sql.DB
}

// NewActivityLogRepository creates a new instance of ActivityLogRepository
func NewActivityLogRepository(db *sql.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

const activityColumns = `id, admin_id, admin_email, action, resource_type, resource_id,
		       status, error_message, ip_address, user_agent, created_at`

// Create inserts a new entry using parameterized queries
func (r *activityLogRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (` + activityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.AdminID,
		entry.AdminEmail,
		entry.Action,
		entry.ResourceType,
		entry.ResourceID,
		entry.Status,
		entry.ErrorMessage,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}

	return nil
}

// ListRecent returns the newest entries first
func (r *activityLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.ActivityLog, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activity_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	return r.query(ctx, query, clampLimit(limit))
}

// ListByResource returns the history of one document, newest first
func (r *activityLogRepository) ListByResource(ctx context.Context, resourceType, resourceID string, limit int) ([]*domain.ActivityLog, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activity_logs
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	return r.query(ctx, query, resourceType, resourceID, clampLimit(limit))
}

func (r *activityLogRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.ActivityLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ActivityLog
	for rows.Next() {
		entry := &domain.ActivityLog{}
		if err := rows.Scan(
			&entry.ID,
			&entry.AdminID,
			&entry.AdminEmail,
			&entry.Action,
			&entry.ResourceType,
			&entry.ResourceID,
			&entry.Status,
			&entry.ErrorMessage,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity logs: %w", err)
	}

	return entries, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultActivityLimit
	}
	if limit > maxActivityLimit {
		return maxActivityLimit
	}
	return limit
}

// memoryActivityLogRepository keeps a bounded in-process history when the
// activity log database is disabled.
type memoryActivityLogRepository struct {
	mu       sync.RWMutex
	entries  []*domain.ActivityLog
	capacity int
}

// NewMemoryActivityLogRepository returns a repository that keeps the last
// capacity entries in memory.
func NewMemoryActivityLogRepository(capacity int) ActivityLogRepository {
	if capacity <= 0 {
		capacity = maxActivityLimit
	}
	return &memoryActivityLogRepository{capacity: capacity}
}

func (m *memoryActivityLogRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *entry
	m.entries = append(m.entries, &copied)
	if len(m.entries) > m.capacity {
		m.entries = m.entries[len(m.entries)-m.capacity:]
	}
	return nil
}

func (m *memoryActivityLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.ActivityLog, error) {
	return m.filter(clampLimit(limit), func(*domain.ActivityLog) bool { return true }), nil
}

func (m *memoryActivityLogRepository) ListByResource(ctx context.Context, resourceType, resourceID string, limit int) ([]*domain.ActivityLog, error) {
	return m.filter(clampLimit(limit), func(e *domain.ActivityLog) bool {
		return e.ResourceType == resourceType && e.ResourceID == resourceID
	}), nil
}

// filter walks the history newest first.
func (m *memoryActivityLogRepository) filter(limit int, keep func(*domain.ActivityLog) bool) []*domain.ActivityLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.ActivityLog
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(m.entries[i]) {
			copied := *m.entries[i]
			out = append(out, &copied)
		}
	}
	return out
}
