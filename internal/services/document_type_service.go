package services

import (
	"errors"
	"fmt"

	"docflow-backend/internal/apperrors"
	"docflow-backend/internal/models"

	"gorm.io/gorm"
)

type DocumentTypeService struct {
	db *gorm.DB
}

func NewDocumentTypeService(db *gorm.DB) *DocumentTypeService {
	return &DocumentTypeService{db: db}
}

func (s *DocumentTypeService) GetDocumentTypes() ([]models.DocumentType, error) {
	var types []models.DocumentType
	if err := s.db.Order("name ASC").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("list document types: %w", err)
	}
	return types, nil
}

func (s *DocumentTypeService) CreateDocumentType(req *models.DocumentTypeRequest) (*models.DocumentType, error) {
	docType := models.DocumentType{Name: req.Name}
	if err := s.db.Create(&docType).Error; err != nil {
		return nil, fmt.Errorf("create document type: %w", err)
	}
	return &docType, nil
}

func (s *DocumentTypeService) UpdateDocumentType(typeID uint, req *models.DocumentTypeRequest) (*models.DocumentType, error) {
	var docType models.DocumentType
	if err := s.db.First(&docType, typeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Document type not found")
		}
		return nil, fmt.Errorf("find document type: %w", err)
	}

	if err := s.db.Model(&docType).Update("name", req.Name).Error; err != nil {
		return nil, fmt.Errorf("update document type: %w", err)
	}

	return &docType, nil
}

// DeleteDocumentType removes a type unless any document still references it.
func (s *DocumentTypeService) DeleteDocumentType(typeID uint) error {
	var docType models.DocumentType
	if err := s.db.First(&docType, typeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Document type not found")
		}
		return fmt.Errorf("find document type: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.Document{}).Where("document_type_id = ?", typeID).Count(&count).Error; err != nil {
		return fmt.Errorf("check document type usage: %w", err)
	}
	if count > 0 {
		return apperrors.Conflict("Document type is in use")
	}

	if err := s.db.Delete(&docType).Error; err != nil {
		return fmt.Errorf("delete document type: %w", err)
	}

	return nil
}
