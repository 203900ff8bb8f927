package services

import (
	"context"
	"fmt"

	"docflow-backend/internal/apperrors"
	"docflow-backend/internal/config"
	"docflow-backend/internal/dropbox"
	"docflow-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DropboxService handles account-level Dropbox concerns: OAuth URL
// construction, storing per-user tokens and probing connection status.
type DropboxService struct {
	db  *gorm.DB
	cfg *config.Config

	newGateway func(accessToken string) StorageGateway
}

func NewDropboxService(db *gorm.DB, cfg *config.Config) *DropboxService {
	return &DropboxService{
		db:  db,
		cfg: cfg,
		newGateway: func(accessToken string) StorageGateway {
			return dropbox.NewClient(accessToken)
		},
	}
}

type DropboxStatus struct {
	Connected bool    `json:"connected"`
	Email     *string `json:"email,omitempty"`
}

func (s *DropboxService) AuthURL() (string, error) {
	if s.cfg.Dropbox.AppKey == "" || s.cfg.Dropbox.RedirectURI == "" {
		return "", apperrors.Validation("Dropbox app key or redirect URI missing")
	}
	return dropbox.AuthorizeURL(s.cfg.Dropbox.AppKey, s.cfg.Dropbox.RedirectURI), nil
}

// Connect stores the user's access token. The account email lookup is best
// effort; a failed probe still stores the token.
func (s *DropboxService) Connect(ctx context.Context, userID uint, accessToken string) error {
	var accountEmail *string
	email, err := s.newGateway(accessToken).CurrentAccountEmail(ctx)
	if err != nil {
		logrus.WithError(err).Warn("dropbox account probe failed on connect")
	} else if email != "" {
		accountEmail = &email
	}

	updates := map[string]interface{}{
		"dropbox_access_token":  accessToken,
		"dropbox_account_email": accountEmail,
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return fmt.Errorf("store dropbox token: %w", err)
	}
	return nil
}

// Status reports whether the user's resolved token is currently usable.
func (s *DropboxService) Status(ctx context.Context, userID uint) (*DropboxStatus, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	token := resolveDropboxToken(&user, s.cfg)
	if token == "" {
		return &DropboxStatus{Connected: false}, nil
	}

	email, err := s.newGateway(token).CurrentAccountEmail(ctx)
	if err != nil {
		return &DropboxStatus{Connected: false}, nil
	}

	status := &DropboxStatus{Connected: true}
	if email != "" {
		status.Email = &email
		if user.DropboxAccountEmail == nil || *user.DropboxAccountEmail != email {
			if err := s.db.Model(&user).Update("dropbox_account_email", email).Error; err != nil {
				logrus.WithError(err).Warn("failed to refresh dropbox account email")
			}
		}
	} else {
		status.Email = user.DropboxAccountEmail
	}

	return status, nil
}

// ListRoot lists the entries at the root of the user's Dropbox.
func (s *DropboxService) ListRoot(ctx context.Context, userID uint) ([]dropbox.Entry, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	token := resolveDropboxToken(&user, s.cfg)
	if token == "" {
		return nil, apperrors.Validation("Dropbox not connected")
	}

	entries, err := s.newGateway(token).ListFolder(ctx, "")
	if err != nil {
		return nil, classifyStorageError(err)
	}
	return entries, nil
}
