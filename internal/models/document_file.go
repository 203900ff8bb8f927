package models

import "time"

// DocumentFile is one entry in a document's upload ledger. Entries are
// append-only: versions are dense, start at 1 and only ever grow.
type DocumentFile struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	DocumentID  uint      `json:"document_id" gorm:"not null;index"`
	Version     int       `json:"version" gorm:"not null"`
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	DropboxPath string    `json:"dropbox_path" gorm:"size:500;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`

	Document *Document `json:"document,omitempty" gorm:"foreignKey:DocumentID"`
}
