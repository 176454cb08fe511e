package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActivitySuccess = "success"
	ActivityFailed  = "failed"
)

// ActivityLog records one mutating action performed through the dashboard
type ActivityLog struct {
	ID           uuid.UUID `json:"id" db:"id"`
	AdminID      string    `json:"admin_id" db:"admin_id"`
	AdminEmail   string    `json:"admin_email" db:"admin_email"`
	Action       string    `json:"action" db:"action"`
	ResourceType string    `json:"resource_type" db:"resource_type"`
	ResourceID   string    `json:"resource_id" db:"resource_id"`
	Status       string    `json:"status" db:"status"`
	ErrorMessage string    `json:"error_message,omitempty" db:"error_message"`
	IPAddress    string    `json:"ip_address" db:"ip_address"`
	UserAgent    string    `json:"user_agent" db:"user_agent"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
