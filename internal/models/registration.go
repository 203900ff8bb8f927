package models

import "time"

// Registration is a user-logged tracking entry against a document. It is
// independent of the document's own registration number.
type Registration struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	DocumentID         uint      `json:"document_id" gorm:"not null;index"`
	RegistrationNumber string    `json:"registration_number" gorm:"size:100;not null"`
	Status             string    `json:"status" gorm:"size:50;not null;default:active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Document *Document `json:"document,omitempty" gorm:"foreignKey:DocumentID"`
}

type RegistrationCreateRequest struct {
	RegistrationNumber string `json:"registration_number" validate:"required,notblank,max=100"`
	Status             string `json:"status" validate:"omitempty,max=50"`
}

type RegistrationUpdateRequest struct {
	RegistrationNumber *string `json:"registration_number" validate:"omitempty,notblank,max=100"`
	Status             *string `json:"status" validate:"omitempty,max=50"`
}
