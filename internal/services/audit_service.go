// internal/services/audit_service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MadeByJay/ai-product-search/internal/models"
)

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) Append(ctx context.Context, userID *uuid.UUID, action string, details models.JSONB) error {
	return appendAudit(s.db.WithContext(ctx), userID, action, details)
}

// ListForUser returns a user's audit trail, newest first.
func (s *AuditService) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.AuditLog, error) {
	logs := make([]models.AuditLog, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}

func appendAudit(db *gorm.DB, userID *uuid.UUID, action string, details models.JSONB) error {
	entry := models.AuditLog{
		UserID:  userID,
		Action:  action,
		Details: details,
	}
	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("append audit log %s: %w", action, err)
	}
	return nil
}
