package models

import "time"

type DocumentType struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DocumentTypeRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}
