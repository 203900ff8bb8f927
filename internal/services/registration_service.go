package services

import (
	"errors"
	"fmt"

	"docflow-backend/internal/apperrors"
	"docflow-backend/internal/models"

	"gorm.io/gorm"
)

type RegistrationService struct {
	db *gorm.DB
}

func NewRegistrationService(db *gorm.DB) *RegistrationService {
	return &RegistrationService{db: db}
}

func (s *RegistrationService) GetRegistrationsForDocument(documentID, ownerID uint) ([]models.Registration, error) {
	if err := s.requireDocument(documentID, ownerID); err != nil {
		return nil, err
	}

	var registrations []models.Registration
	err := s.db.Where("document_id = ?", documentID).Order("created_at ASC").Find(&registrations).Error
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return registrations, nil
}

func (s *RegistrationService) CreateRegistration(documentID, ownerID uint, req *models.RegistrationCreateRequest) (*models.Registration, error) {
	if err := s.requireDocument(documentID, ownerID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = "active"
	}

	registration := models.Registration{
		DocumentID:         documentID,
		RegistrationNumber: req.RegistrationNumber,
		Status:             status,
	}
	if err := s.db.Create(&registration).Error; err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}

	return &registration, nil
}

func (s *RegistrationService) GetRegistration(registrationID, ownerID uint) (*models.Registration, error) {
	return s.findOwned(registrationID, ownerID)
}

func (s *RegistrationService) UpdateRegistration(registrationID, ownerID uint, req *models.RegistrationUpdateRequest) (*models.Registration, error) {
	registration, err := s.findOwned(registrationID, ownerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.RegistrationNumber != nil {
		updates["registration_number"] = *req.RegistrationNumber
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := s.db.Model(registration).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update registration: %w", err)
		}
	}

	return registration, nil
}

func (s *RegistrationService) DeleteRegistration(registrationID, ownerID uint) error {
	registration, err := s.findOwned(registrationID, ownerID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(registration).Error; err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

// findOwned loads a registration and enforces ownership through the parent
// document. Non-owners get NotFound, never a hint the row exists.
func (s *RegistrationService) findOwned(registrationID, ownerID uint) (*models.Registration, error) {
	var registration models.Registration
	err := s.db.Joins("JOIN documents ON documents.id = registrations.document_id").
		Where("registrations.id = ? AND documents.owner_id = ?", registrationID, ownerID).
		First(&registration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Registration not found")
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &registration, nil
}

func (s *RegistrationService) requireDocument(documentID, ownerID uint) error {
	var count int64
	err := s.db.Model(&models.Document{}).Where("id = ? AND owner_id = ?", documentID, ownerID).Count(&count).Error
	if err != nil {
		return fmt.Errorf("find document: %w", err)
	}
	if count == 0 {
		return apperrors.NotFound("Document not found")
	}
	return nil
}
