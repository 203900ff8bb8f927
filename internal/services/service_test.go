package services

import (
	"context"
	"io"
	"testing"

	"docflow-backend/internal/config"
	"docflow-backend/internal/dropbox"
	"docflow-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.DocumentType{},
		&models.Document{},
		&models.DocumentFile{},
		&models.Registration{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Dropbox: config.DropboxConfig{AccessToken: "test-default-token"},
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := models.User{Name: "Test User", Email: email, PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

func createTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}
	return &category
}

func createTestType(t *testing.T, db *gorm.DB, name string) *models.DocumentType {
	t.Helper()

	docType := models.DocumentType{Name: name}
	if err := db.Create(&docType).Error; err != nil {
		t.Fatalf("Failed to create test document type: %v", err)
	}
	return &docType
}

// fakeGateway is an in-memory StorageGateway for lifecycle tests.
type fakeGateway struct {
	uploadErr error
	linkErr   error
	link      string
	uploaded  []string
}

func (f *fakeGateway) Upload(ctx context.Context, path string, contents io.Reader) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploaded = append(f.uploaded, path)
	return nil
}

func (f *fakeGateway) TemporaryLink(ctx context.Context, path string) (string, error) {
	if f.linkErr != nil {
		return "", f.linkErr
	}
	if f.link != "" {
		return f.link, nil
	}
	return "https://content.example.com" + path, nil
}

func (f *fakeGateway) CurrentAccountEmail(ctx context.Context) (string, error) {
	return "fake@example.com", nil
}

func (f *fakeGateway) ListFolder(ctx context.Context, path string) ([]dropbox.Entry, error) {
	return nil, nil
}

func newTestDocumentService(db *gorm.DB, gateway StorageGateway) *DocumentService {
	svc := NewDocumentService(db, testConfig())
	svc.newGateway = func(string) StorageGateway { return gateway }
	return svc
}
