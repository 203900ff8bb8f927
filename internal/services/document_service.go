package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"docflow-backend/internal/apperrors"
	"docflow-backend/internal/config"
	"docflow-backend/internal/dropbox"
	"docflow-backend/internal/models"

	"gorm.io/gorm"
)

// StorageGateway is the slice of the external storage provider the document
// lifecycle depends on. *dropbox.Client implements it.
type StorageGateway interface {
	Upload(ctx context.Context, path string, contents io.Reader) error
	TemporaryLink(ctx context.Context, path string) (string, error)
	CurrentAccountEmail(ctx context.Context) (string, error)
	ListFolder(ctx context.Context, path string) ([]dropbox.Entry, error)
}

type DocumentService struct {
	db  *gorm.DB
	cfg *config.Config

	// Swappable seams for tests.
	newGateway     func(accessToken string) StorageGateway
	generateNumber func() string
}

func NewDocumentService(db *gorm.DB, cfg *config.Config) *DocumentService {
	return &DocumentService{
		db:  db,
		cfg: cfg,
		newGateway: func(accessToken string) StorageGateway {
			return dropbox.NewClient(accessToken)
		},
		generateNumber: buildRegistrationNumber,
	}
}

const base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// buildRegistrationNumber produces a candidate of the form
// DOC-<base36 millis>-<5 random base36 chars>, uppercased.
func buildRegistrationNumber() string {
	timestamp := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = base36Upper[rand.Intn(len(base36Upper))]
	}
	return fmt.Sprintf("DOC-%s-%s", timestamp, suffix)
}

// allocateRegistrationNumber returns a registration number not currently in
// use. A caller-supplied number that collides is a Conflict; generated
// candidates are redrawn until one is free.
func (s *DocumentService) allocateRegistrationNumber(requested string) (string, error) {
	if requested != "" {
		inUse, err := s.registrationNumberInUse(requested)
		if err != nil {
			return "", err
		}
		if inUse {
			return "", apperrors.Conflict("Registration number already in use")
		}
		return requested, nil
	}

	for {
		candidate := s.generateNumber()
		inUse, err := s.registrationNumberInUse(candidate)
		if err != nil {
			return "", err
		}
		if !inUse {
			return candidate, nil
		}
	}
}

func (s *DocumentService) registrationNumberInUse(number string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Document{}).Where("registration_number = ?", number).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check registration number: %w", err)
	}
	return count > 0, nil
}

// CreateDocument validates the category and type references, denormalizes
// their names onto the new document and assigns a registration number.
// The pre-check only narrows the race window; the unique index is the real
// guard, and a duplicated-key commit with a generated number retries with a
// fresh draw.
func (s *DocumentService) CreateDocument(ownerID uint, req *models.DocumentCreateRequest) (*models.Document, error) {
	var category models.Category
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Validation("Invalid categoryId")
		}
		return nil, fmt.Errorf("find category: %w", err)
	}

	var docType models.DocumentType
	if err := s.db.First(&docType, req.DocumentTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Validation("Invalid documentTypeId")
		}
		return nil, fmt.Errorf("find document type: %w", err)
	}

	for {
		number, err := s.allocateRegistrationNumber(req.RegistrationNumber)
		if err != nil {
			return nil, err
		}

		typeID := req.DocumentTypeID
		document := models.Document{
			OwnerID:            ownerID,
			Title:              req.Title,
			Description:        req.Description,
			CategoryID:         category.ID,
			Category:           category.Name,
			DocumentTypeID:     &typeID,
			DocumentType:       docType.Name,
			RegistrationNumber: &number,
		}

		err = s.db.Create(&document).Error
		if err == nil {
			return &document, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if req.RegistrationNumber != "" {
				return nil, apperrors.Conflict("Registration number already in use")
			}
			// Lost a race on a generated number; draw again.
			continue
		}
		return nil, fmt.Errorf("create document: %w", err)
	}
}

// GetDocuments lists the caller's documents, newest first. Filters: exact
// category, substring title, substring registration number.
func (s *DocumentService) GetDocuments(ownerID uint, req *models.DocumentListRequest) ([]models.Document, error) {
	query := s.db.Where("owner_id = ?", ownerID)
	if req.CategoryID != nil {
		query = query.Where("category_id = ?", *req.CategoryID)
	}
	if req.Title != "" {
		query = query.Where("title LIKE ?", "%"+req.Title+"%")
	}
	if req.RegistrationNumber != "" {
		query = query.Where("registration_number LIKE ?", "%"+req.RegistrationNumber+"%")
	}

	var documents []models.Document
	err := query.Preload("Registrations").Order("created_at DESC").Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return documents, nil
}

func (s *DocumentService) GetDocument(documentID, ownerID uint) (*models.Document, error) {
	var document models.Document
	err := s.db.Where("id = ? AND owner_id = ?", documentID, ownerID).
		Preload("Registrations").
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("document_files.created_at ASC")
		}).
		First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Document not found")
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return &document, nil
}

// UpdateDocument applies a partial update. Supplying a category or type
// re-validates the reference and refreshes the denormalized name snapshot.
func (s *DocumentService) UpdateDocument(documentID, ownerID uint, req *models.DocumentUpdateRequest) (*models.Document, error) {
	var document models.Document
	err := s.db.Where("id = ? AND owner_id = ?", documentID, ownerID).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Document not found")
		}
		return nil, fmt.Errorf("find document: %w", err)
	}

	updates := map[string]interface{}{}

	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := s.db.First(&category, *req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.Validation("Invalid categoryId")
			}
			return nil, fmt.Errorf("find category: %w", err)
		}
		updates["category_id"] = category.ID
		updates["category"] = category.Name
	}

	if req.DocumentTypeID != nil {
		var docType models.DocumentType
		if err := s.db.First(&docType, *req.DocumentTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.Validation("Invalid documentTypeId")
			}
			return nil, fmt.Errorf("find document type: %w", err)
		}
		updates["document_type_id"] = docType.ID
		updates["document_type"] = docType.Name
	}

	if req.RegistrationNumber != nil {
		current := ""
		if document.RegistrationNumber != nil {
			current = *document.RegistrationNumber
		}
		if *req.RegistrationNumber != current {
			inUse, err := s.registrationNumberInUse(*req.RegistrationNumber)
			if err != nil {
				return nil, err
			}
			if inUse {
				return nil, apperrors.Conflict("Registration number already in use")
			}
			updates["registration_number"] = *req.RegistrationNumber
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(&document).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.Conflict("Registration number already in use")
			}
			return nil, fmt.Errorf("update document: %w", err)
		}
	}

	return &document, nil
}

// DeleteDocument removes a document together with its registration log and
// its entire file-version ledger.
func (s *DocumentService) DeleteDocument(documentID, ownerID uint) error {
	var document models.Document
	err := s.db.Where("id = ? AND owner_id = ?", documentID, ownerID).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Document not found")
		}
		return fmt.Errorf("find document: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", document.ID).Delete(&models.Registration{}).Error; err != nil {
			return fmt.Errorf("delete registrations: %w", err)
		}
		if err := tx.Where("document_id = ?", document.ID).Delete(&models.DocumentFile{}).Error; err != nil {
			return fmt.Errorf("delete document files: %w", err)
		}
		if err := tx.Delete(&document).Error; err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		return nil
	})
}

// UploadFile sends the bytes to the storage provider, then commits the
// document's file pointer and a new ledger entry together. A provider
// failure leaves both untouched; a database failure rolls both back.
func (s *DocumentService) UploadFile(ctx context.Context, documentID, ownerID uint, fileName string, contents io.Reader) (*models.DocumentFile, error) {
	var document models.Document
	err := s.db.Where("id = ? AND owner_id = ?", documentID, ownerID).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Document not found")
		}
		return nil, fmt.Errorf("find document: %w", err)
	}

	gateway, err := s.gatewayFor(ownerID)
	if err != nil {
		return nil, err
	}

	dropboxPath := fmt.Sprintf("/documents/%d/%s", document.ID, fileName)
	if err := gateway.Upload(ctx, dropboxPath, contents); err != nil {
		return nil, classifyStorageError(err)
	}

	var file models.DocumentFile
	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"dropbox_path":      dropboxPath,
			"dropbox_file_name": fileName,
		}
		if err := tx.Model(&document).Updates(updates).Error; err != nil {
			return fmt.Errorf("update file pointer: %w", err)
		}

		var count int64
		if err := tx.Model(&models.DocumentFile{}).Where("document_id = ?", document.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("count file versions: %w", err)
		}

		file = models.DocumentFile{
			DocumentID:  document.ID,
			Version:     int(count) + 1,
			FileName:    fileName,
			DropboxPath: dropboxPath,
		}
		if err := tx.Create(&file).Error; err != nil {
			return fmt.Errorf("append file version: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &file, nil
}

// GetFileVersions returns the document's upload history, oldest first.
func (s *DocumentService) GetFileVersions(documentID, ownerID uint) ([]models.DocumentFile, error) {
	if _, err := s.GetDocument(documentID, ownerID); err != nil {
		return nil, err
	}

	var files []models.DocumentFile
	err := s.db.Where("document_id = ?", documentID).Order("created_at ASC").Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("list file versions: %w", err)
	}
	return files, nil
}

// DownloadLink resolves a temporary link for the document's current file.
func (s *DocumentService) DownloadLink(ctx context.Context, documentID, ownerID uint) (string, error) {
	var document models.Document
	err := s.db.Where("id = ? AND owner_id = ?", documentID, ownerID).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.NotFound("File not found")
		}
		return "", fmt.Errorf("find document: %w", err)
	}
	if document.DropboxPath == nil {
		return "", apperrors.NotFound("File not found")
	}

	return s.temporaryLink(ctx, ownerID, *document.DropboxPath)
}

// FileDownloadLink resolves a temporary link for one specific ledger entry.
func (s *DocumentService) FileDownloadLink(ctx context.Context, documentID, fileID, ownerID uint) (string, error) {
	var document models.Document
	err := s.db.Where("id = ? AND owner_id = ?", documentID, ownerID).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.NotFound("Document not found")
		}
		return "", fmt.Errorf("find document: %w", err)
	}

	var file models.DocumentFile
	err = s.db.Where("id = ? AND document_id = ?", fileID, document.ID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.NotFound("File not found")
		}
		return "", fmt.Errorf("find document file: %w", err)
	}

	return s.temporaryLink(ctx, ownerID, file.DropboxPath)
}

func (s *DocumentService) temporaryLink(ctx context.Context, ownerID uint, path string) (string, error) {
	gateway, err := s.gatewayFor(ownerID)
	if err != nil {
		return "", err
	}

	link, err := gateway.TemporaryLink(ctx, path)
	if err != nil {
		return "", classifyStorageError(err)
	}
	return link, nil
}

// gatewayFor builds a storage gateway with the user's own token, falling
// back to the process-wide default.
func (s *DocumentService) gatewayFor(userID uint) (StorageGateway, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	token := resolveDropboxToken(&user, s.cfg)
	if token == "" {
		return nil, apperrors.Validation("Dropbox not connected")
	}
	return s.newGateway(token), nil
}

func resolveDropboxToken(user *models.User, cfg *config.Config) string {
	if user.DropboxAccessToken != nil && *user.DropboxAccessToken != "" {
		return *user.DropboxAccessToken
	}
	return cfg.Dropbox.AccessToken
}

// classifyStorageError folds a gateway failure into the error taxonomy:
// expired or invalid credentials ask the caller to re-authorize, anything
// else is a provider failure that may be retried later.
func classifyStorageError(err error) error {
	var apiErr *dropbox.APIError
	if errors.As(err, &apiErr) && apiErr.ExpiredCredential() {
		return apperrors.ExpiredCredential("Dropbox token expirat. Reconecteaza Dropbox si reincearca.")
	}
	return apperrors.Provider("Storage provider request failed")
}
