package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	Name                string         `json:"name" gorm:"size:100;not null"`
	Email               string         `json:"email" gorm:"uniqueIndex;size:100;not null"`
	PasswordHash        string         `json:"-" gorm:"size:255;not null"`
	DropboxAccessToken  *string        `json:"-" gorm:"size:500"`
	DropboxAccountEmail *string        `json:"dropbox_account_email,omitempty" gorm:"size:100"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`

	Documents []Document `json:"documents,omitempty" gorm:"foreignKey:OwnerID"`
}

type UserRegisterRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
