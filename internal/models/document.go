package models

import "time"

// Document carries denormalized category/type name snapshots alongside the
// foreign keys. The snapshots refresh only when a write supplies the key
// again; renaming a category or type does not rewrite existing rows.
type Document struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	OwnerID            uint      `json:"owner_id" gorm:"not null;index"`
	Title              string    `json:"title" gorm:"size:255;not null"`
	Description        string    `json:"description" gorm:"type:text"`
	CategoryID         uint      `json:"category_id" gorm:"not null;index"`
	Category           string    `json:"category" gorm:"size:100"`
	DocumentTypeID     *uint     `json:"document_type_id" gorm:"index"`
	DocumentType       string    `json:"document_type" gorm:"size:100"`
	RegistrationNumber *string   `json:"registration_number" gorm:"uniqueIndex;size:100"`
	DropboxPath        *string   `json:"dropbox_path" gorm:"size:500"`
	DropboxFileName    *string   `json:"dropbox_file_name" gorm:"size:255"`
	CreatedAt          time.Time `json:"created_at" gorm:"index"`
	UpdatedAt          time.Time `json:"updated_at"`

	Owner         *User          `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Files         []DocumentFile `json:"files,omitempty" gorm:"foreignKey:DocumentID"`
	Registrations []Registration `json:"registrations,omitempty" gorm:"foreignKey:DocumentID"`
}

type DocumentCreateRequest struct {
	Title              string `json:"title" validate:"required,notblank,max=255"`
	Description        string `json:"description"`
	CategoryID         uint   `json:"category_id" validate:"required"`
	DocumentTypeID     uint   `json:"document_type_id" validate:"required"`
	RegistrationNumber string `json:"registration_number" validate:"omitempty,max=100"`
}

type DocumentUpdateRequest struct {
	Title              *string `json:"title" validate:"omitempty,notblank,max=255"`
	Description        *string `json:"description"`
	CategoryID         *uint   `json:"category_id"`
	DocumentTypeID     *uint   `json:"document_type_id"`
	RegistrationNumber *string `json:"registration_number" validate:"omitempty,max=100"`
}

type DocumentListRequest struct {
	CategoryID         *uint  `form:"category_id"`
	Title              string `form:"title"`
	RegistrationNumber string `form:"registration_number"`
}
