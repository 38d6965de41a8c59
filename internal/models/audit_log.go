package models

// AuditLog records a user-facing action against a resource, for support
// and activity history.
type AuditLog struct {
	Base
	UserID       string `gorm:"type:uuid;index" json:"user_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `gorm:"type:text" json:"changes,omitempty"`
}
