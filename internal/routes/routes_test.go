package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"docflow-backend/internal/config"
	"docflow-backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
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

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireHours = 1

	return Setup(db, cfg)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, models.Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope models.Response
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, envelope
}

func registerAndLogin(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()

	rec, _ := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Ana Popescu",
		"email":    email,
		"password": "parola123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Register returned %d: %s", rec.Code, rec.Body.String())
	}

	rec, envelope := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": "parola123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Login returned %d: %s", rec.Code, rec.Body.String())
	}

	data, _ := json.Marshal(envelope.Data)
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Token == "" {
		t.Fatalf("Expected a token in login response, got %s", rec.Body.String())
	}
	return payload.Token
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := setupRouter(t)

	for _, path := range []string{"/api/documents", "/api/categories", "/api/document-types"} {
		rec, _ := doJSON(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token returned %d, want 401", path, rec.Code)
		}
	}

	rec, _ := doJSON(t, router, http.MethodGet, "/api/documents", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Garbage token returned %d, want 401", rec.Code)
	}
}

func TestRegisterLoginAndCreateDocumentFlow(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, "ana@example.com")

	rec, envelope := doJSON(t, router, http.MethodPost, "/api/categories", token, gin.H{"name": "Contract"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create category returned %d: %s", rec.Code, rec.Body.String())
	}
	data, _ := json.Marshal(envelope.Data)
	var category struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(data, &category); err != nil || category.ID == 0 {
		t.Fatalf("Expected category id in %s", rec.Body.String())
	}

	rec, envelope = doJSON(t, router, http.MethodPost, "/api/document-types", token, gin.H{"name": "Intern"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create document type returned %d: %s", rec.Code, rec.Body.String())
	}
	data, _ = json.Marshal(envelope.Data)
	var docType struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(data, &docType); err != nil || docType.ID == 0 {
		t.Fatalf("Expected document type id in %s", rec.Body.String())
	}

	rec, envelope = doJSON(t, router, http.MethodPost, "/api/documents", token, gin.H{
		"title":            "Lease",
		"category_id":      category.ID,
		"document_type_id": docType.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create document returned %d: %s", rec.Code, rec.Body.String())
	}
	data, _ = json.Marshal(envelope.Data)
	var document struct {
		RegistrationNumber string `json:"registration_number"`
		Category           string `json:"category"`
	}
	if err := json.Unmarshal(data, &document); err != nil {
		t.Fatalf("Failed to decode document: %v", err)
	}
	if document.RegistrationNumber == "" {
		t.Errorf("Expected an assigned registration number in %s", rec.Body.String())
	}
	if document.Category != "Contract" {
		t.Errorf("Expected denormalized category Contract, got %q", document.Category)
	}

	rec, envelope = doJSON(t, router, http.MethodGet, "/api/documents", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("List documents returned %d: %s", rec.Code, rec.Body.String())
	}
	data, _ = json.Marshal(envelope.Data)
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil || len(list) != 1 {
		t.Errorf("Expected 1 document in list, got %s", rec.Body.String())
	}
}

func TestValidationAndConflictStatuses(t *testing.T) {
	router := setupRouter(t)
	token := registerAndLogin(t, router, "ana@example.com")

	// Whitespace-only name fails validation before reaching the service.
	rec, _ := doJSON(t, router, http.MethodPost, "/api/categories", token, gin.H{"name": "   "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Blank category name returned %d, want 422", rec.Code)
	}

	// Second registration with the same email is a conflict.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Ana",
		"email":    "ana@example.com",
		"password": "parola123",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("Duplicate email returned %d, want 409", rec.Code)
	}

	// Unknown category reference is a 400 from the service.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/documents", token, gin.H{
		"title":            "Lease",
		"category_id":      999,
		"document_type_id": 999,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Invalid references returned %d, want 400", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := setupRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Health returned %d, want 200", rec.Code)
	}
}
