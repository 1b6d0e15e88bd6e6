// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MadeByJay/ai-product-search/internal/database"
	"github.com/MadeByJay/ai-product-search/internal/models"
)

// Preferences every new account starts with.
var defaultPreferences = UpdatePreferencesRequest{
	PageLimit: intPtr(24),
	Theme:     strPtr("light"),
}

type UserService struct {
	db *gorm.DB
}

type CreateUserRequest struct {
	ID        string  `json:"id" validate:"required,uuid"`
	Email     string  `json:"email" validate:"required,email"`
	Name      *string `json:"name" validate:"omitempty,max=200"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

type SyncUserRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Name      *string `json:"name" validate:"omitempty,max=200"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

type CreateUserResult struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Created bool      `json:"created"`
}

type SyncUserResult struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  *string   `json:"name,omitempty"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateWithDefaults inserts the user, their default preferences, and a
// user_created audit entry in one transaction.
func (s *UserService) CreateWithDefaults(ctx context.Context, req CreateUserRequest) (*CreateUserResult, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	user := &models.User{
		ID:        id,
		Email:     normalizeEmail(req.Email),
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}

	return &CreateUserResult{ID: user.ID, Email: user.Email, Created: true}, nil
}

// Sync returns the user with this email, creating one on first sight.
func (s *UserService) Sync(ctx context.Context, req SyncUserRequest) (*SyncUserResult, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.FindByEmail(ctx, email)
	if err == nil {
		return &SyncUserResult{ID: existing.ID, Email: existing.Email, Name: existing.Name}, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user := &models.User{
		ID:        uuid.New(),
		Email:     email,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	}
	if err := s.create(ctx, user); err != nil {
		if !errors.Is(err, ErrUserExists) {
			return nil, err
		}
		// Lost a race with a concurrent sync for the same email.
		existing, err := s.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &SyncUserResult{ID: existing.ID, Email: existing.Email, Name: existing.Name}, nil
	}

	return &SyncUserResult{ID: user.ID, Email: user.Email, Name: user.Name}, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) create(ctx context.Context, user *models.User) error {
	return database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ? OR email = ?", user.ID, user.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("check existing user: %w", err)
		}
		if count > 0 {
			return ErrUserExists
		}

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUserExists
			}
			return fmt.Errorf("create user: %w", err)
		}

		if _, err := upsertPreferences(tx, user.ID, defaultPreferences); err != nil {
			return err
		}

		return appendAudit(tx, &user.ID, models.AuditActionUserCreated, models.JSONB{
			"email":         user.Email,
			"with_defaults": true,
		})
	})
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
