package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"moneta/internal/logger"
	"moneta/internal/models"
)

// auditService records user actions for support and activity history.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log writes an audit entry. Audit failures are logged but never surfaced:
// the action being audited already succeeded.
func (s *auditService) Log(userID string, action, resourceType string, resourceID string, ipAddress string, changes map[string]interface{}) {
	var changesJSON string
	if changes != nil {
		b, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Warnw("failed to marshal audit changes", "action", action, "error", err)
		} else {
			changesJSON = string(b)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to write audit log",
			"action", action,
			"resource_type", resourceType,
			"error", err,
		)
	}
}
