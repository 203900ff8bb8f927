package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"docflow-backend/internal/apperrors"
	"docflow-backend/internal/dropbox"
	"docflow-backend/internal/models"
)

var registrationNumberPattern = regexp.MustCompile(`^DOC-[A-Z0-9]+-[A-Z0-9]+$`)

func TestCreateDocumentEndToEnd(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestDocumentService(db, &fakeGateway{})
	user := createTestUser(t, db, "owner@example.com")
	category := createTestCategory(t, db, "Contract")
	docType := createTestType(t, db, "Intern")

	document, err := svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
		Title:          "Lease",
		CategoryID:     category.ID,
		DocumentTypeID: docType.ID,
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	if document.RegistrationNumber == nil {
		t.Fatal("Expected a registration number to be assigned")
	}
	if !registrationNumberPattern.MatchString(*document.RegistrationNumber) {
		t.Errorf("Registration number %q does not match expected pattern", *document.RegistrationNumber)
	}
	if document.Category != "Contract" {
		t.Errorf("Expected denormalized category %q, got %q", "Contract", document.Category)
	}
	if document.DocumentType != "Intern" {
		t.Errorf("Expected denormalized type %q, got %q", "Intern", document.DocumentType)
	}
}

func TestCreateDocumentInvalidReferences(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestDocumentService(db, &fakeGateway{})
	user := createTestUser(t, db, "owner@example.com")
	category := createTestCategory(t, db, "Contract")
	docType := createTestType(t, db, "Intern")

	_, err := svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
		Title:          "Lease",
		CategoryID:     999,
		DocumentTypeID: docType.ID,
	})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Expected validation error for missing category, got %v", err)
	}

	_, err = svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
		Title:          "Lease",
		CategoryID:     category.ID,
		DocumentTypeID: 999,
	})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Expected validation error for missing type, got %v", err)
	}
}

func TestCreateDocumentRequestedNumberConflict(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestDocumentService(db, &fakeGateway{})
	user := createTestUser(t, db, "owner@example.com")
	category := createTestCategory(t, db, "Contract")
	docType := createTestType(t, db, "Intern")

	_, err := svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
		Title:              "First",
		CategoryID:         category.ID,
		DocumentTypeID:     docType.ID,
		RegistrationNumber: "REG-2024-001",
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	_, err = svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
		Title:              "Second",
		CategoryID:         category.ID,
		DocumentTypeID:     docType.ID,
		RegistrationNumber: "REG-2024-001",
	})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("Expected conflict for reused registration number, got %v", err)
	}
}

func TestAllocatorRetriesUntilFreshDraw(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestDocumentService(db, &fakeGateway{})
	user := createTestUser(t, db, "owner@example.com")
	category := createTestCategory(t, db, "Contract")
	docType := createTestType(t, db, "Intern")

	// Pre-seed the numbers the stubbed generator will collide with.
	for _, number := range []string{"DOC-AAA-1", "DOC-AAA-2"} {
		taken := number
		db.Create(&models.Document{
			OwnerID:            user.ID,
			Title:              "Seed",
			CategoryID:         category.ID,
			RegistrationNumber: &taken,
		})
	}

	draws := []string{"DOC-AAA-1", "DOC-AAA-2", "DOC-AAA-3"}
	next := 0
	svc.generateNumber = func() string {
		draw := draws[next]
		next++
		return draw
	}

	document, err := svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
		Title:          "Lease",
		CategoryID:     category.ID,
		DocumentTypeID: docType.ID,
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if document.RegistrationNumber == nil || *document.RegistrationNumber != "DOC-AAA-3" {
		t.Errorf("Expected allocator to settle on DOC-AAA-3, got %v", document.RegistrationNumber)
	}
}

func TestRegistrationNumbersUnique(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestDocumentService(db, &fakeGateway{})
	user := createTestUser(t, db, "owner@example.com")
	category := createTestCategory(t, db, "Contract")
	docType := createTestType(t, db, "Intern")

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		document, err := svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
			Title:          "Doc",
			CategoryID:     category.ID,
			DocumentTypeID: docType.ID,
		})
		if err != nil {
			t.Fatalf("CreateDocument failed on iteration %d: %v", i, err)
		}
		number := *document.RegistrationNumber
		if seen[number] {
			t.Fatalf("Duplicate registration number allocated: %s", number)
		}
		seen[number] = true
	}
}

func TestUpdateDocumentRefreshesSnapshots(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestDocumentService(db, &fakeGateway{})
	user := createTestUser(t, db, "owner@example.com")
	category := createTestCategory(t, db, "Contract")
	docType := createTestType(t, db, "Intern")

	document, err := svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
		Title:          "Lease",
		CategoryID:     category.ID,
		DocumentTypeID: docType.ID,
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	other := createTestCategory(t, db, "Factura")
	_, err = svc.UpdateDocument(document.ID, user.ID, &models.DocumentUpdateRequest{CategoryID: &other.ID})
	if err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}

	var reloaded models.Document
	db.First(&reloaded, document.ID)
	if reloaded.Category != "Factura" {
		t.Errorf("Expected category snapshot refreshed to Factura, got %q", reloaded.Category)
	}

	// Renaming the category must not rewrite the stored snapshot.
	db.Model(&other).Update("name", "Factura veche")
	db.First(&reloaded, document.ID)
	if reloaded.Category != "Factura" {
		t.Errorf("Expected snapshot to stay stale after rename, got %q", reloaded.Category)
	}
}

func TestUpdateDocumentRegistrationNumberConflict(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestDocumentService(db, &fakeGateway{})
	user := createTestUser(t, db, "owner@example.com")
	category := createTestCategory(t, db, "Contract")
	docType := createTestType(t, db, "Intern")

	first, err := svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
		Title:          "First",
		CategoryID:     category.ID,
		DocumentTypeID: docType.ID,
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	second, err := svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
		Title:          "Second",
		CategoryID:     category.ID,
		DocumentTypeID: docType.ID,
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	_, err = svc.UpdateDocument(second.ID, user.ID, &models.DocumentUpdateRequest{
		RegistrationNumber: first.RegistrationNumber,
	})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("Expected conflict on registration number takeover, got %v", err)
	}

	// Re-submitting the current number is a no-op, not a conflict.
	_, err = svc.UpdateDocument(second.ID, user.ID, &models.DocumentUpdateRequest{
		RegistrationNumber: second.RegistrationNumber,
	})
	if err != nil {
		t.Errorf("Expected idempotent update with own number, got %v", err)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	db := setupTestDB(t)
	gateway := &fakeGateway{}
	svc := newTestDocumentService(db, gateway)
	owner := createTestUser(t, db, "owner@example.com")
	intruder := createTestUser(t, db, "intruder@example.com")
	category := createTestCategory(t, db, "Contract")
	docType := createTestType(t, db, "Intern")

	document, err := svc.CreateDocument(owner.ID, &models.DocumentCreateRequest{
		Title:          "Lease",
		CategoryID:     category.ID,
		DocumentTypeID: docType.ID,
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if _, err := svc.UploadFile(context.Background(), document.ID, owner.ID, "lease.pdf", strings.NewReader("data")); err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}

	if _, err := svc.GetDocument(document.ID, intruder.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Get: expected not found for non-owner, got %v", err)
	}
	title := "Stolen"
	if _, err := svc.UpdateDocument(document.ID, intruder.ID, &models.DocumentUpdateRequest{Title: &title}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Update: expected not found for non-owner, got %v", err)
	}
	if err := svc.DeleteDocument(document.ID, intruder.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Delete: expected not found for non-owner, got %v", err)
	}
	if _, err := svc.UploadFile(context.Background(), document.ID, intruder.ID, "x.pdf", strings.NewReader("x")); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Upload: expected not found for non-owner, got %v", err)
	}
	if _, err := svc.DownloadLink(context.Background(), document.ID, intruder.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Download: expected not found for non-owner, got %v", err)
	}

	documents, err := svc.GetDocuments(intruder.ID, &models.DocumentListRequest{})
	if err != nil {
		t.Fatalf("GetDocuments failed: %v", err)
	}
	if len(documents) != 0 {
		t.Errorf("Expected other user's documents to be invisible, got %d", len(documents))
	}
}

func TestUploadFileVersionMonotonicity(t *testing.T) {
	db := setupTestDB(t)
	gateway := &fakeGateway{}
	svc := newTestDocumentService(db, gateway)
	user := createTestUser(t, db, "owner@example.com")
	category := createTestCategory(t, db, "Contract")
	docType := createTestType(t, db, "Intern")

	document, err := svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
		Title:          "Lease",
		CategoryID:     category.ID,
		DocumentTypeID: docType.ID,
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	first, err := svc.UploadFile(context.Background(), document.ID, user.ID, "lease.pdf", strings.NewReader("v1"))
	if err != nil {
		t.Fatalf("First upload failed: %v", err)
	}
	if first.Version != 1 {
		t.Errorf("Expected first version to be 1, got %d", first.Version)
	}

	second, err := svc.UploadFile(context.Background(), document.ID, user.ID, "lease-signed.pdf", strings.NewReader("v2"))
	if err != nil {
		t.Fatalf("Second upload failed: %v", err)
	}
	if second.Version != 2 {
		t.Errorf("Expected second version to be 2, got %d", second.Version)
	}

	var reloaded models.Document
	db.First(&reloaded, document.ID)
	if reloaded.DropboxFileName == nil || *reloaded.DropboxFileName != "lease-signed.pdf" {
		t.Errorf("Expected pointer to follow newest upload, got %v", reloaded.DropboxFileName)
	}

	// A storage failure must leave the ledger and the pointer untouched.
	gateway.uploadErr = &dropbox.APIError{Status: 500, Summary: "internal_error/.."}
	_, err = svc.UploadFile(context.Background(), document.ID, user.ID, "broken.pdf", strings.NewReader("v3"))
	if !errors.Is(err, apperrors.ErrProvider) {
		t.Fatalf("Expected provider error, got %v", err)
	}

	versions, err := svc.GetFileVersions(document.ID, user.ID)
	if err != nil {
		t.Fatalf("GetFileVersions failed: %v", err)
	}
	if len(versions) != 2 {
		t.Errorf("Expected ledger to keep 2 entries after failed upload, got %d", len(versions))
	}
	for i, version := range versions {
		if version.Version != i+1 {
			t.Errorf("Expected dense versions, got %d at index %d", version.Version, i)
		}
	}

	db.First(&reloaded, document.ID)
	if reloaded.DropboxFileName == nil || *reloaded.DropboxFileName != "lease-signed.pdf" {
		t.Errorf("Expected pointer unchanged after failed upload, got %v", reloaded.DropboxFileName)
	}
}

func TestUploadExpiredCredentialClassification(t *testing.T) {
	db := setupTestDB(t)
	gateway := &fakeGateway{uploadErr: &dropbox.APIError{Status: 401, Summary: "expired_access_token/.."}}
	svc := newTestDocumentService(db, gateway)
	user := createTestUser(t, db, "owner@example.com")
	category := createTestCategory(t, db, "Contract")
	docType := createTestType(t, db, "Intern")

	document, err := svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
		Title:          "Lease",
		CategoryID:     category.ID,
		DocumentTypeID: docType.ID,
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	_, err = svc.UploadFile(context.Background(), document.ID, user.ID, "lease.pdf", strings.NewReader("v1"))
	if !errors.Is(err, apperrors.ErrExpiredCredential) {
		t.Errorf("Expected expired credential error, got %v", err)
	}

	var count int64
	db.Model(&models.DocumentFile{}).Where("document_id = ?", document.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected no ledger entries after credential failure, got %d", count)
	}
}

func TestUploadWithoutDropboxToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestDocumentService(db, &fakeGateway{})
	svc.cfg.Dropbox.AccessToken = ""
	user := createTestUser(t, db, "owner@example.com")
	category := createTestCategory(t, db, "Contract")
	docType := createTestType(t, db, "Intern")

	document, err := svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
		Title:          "Lease",
		CategoryID:     category.ID,
		DocumentTypeID: docType.ID,
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	_, err = svc.UploadFile(context.Background(), document.ID, user.ID, "lease.pdf", strings.NewReader("v1"))
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Expected validation error without token, got %v", err)
	}
}

func TestDownloadLinkWithoutFile(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestDocumentService(db, &fakeGateway{})
	user := createTestUser(t, db, "owner@example.com")
	category := createTestCategory(t, db, "Contract")
	docType := createTestType(t, db, "Intern")

	document, err := svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
		Title:          "Lease",
		CategoryID:     category.ID,
		DocumentTypeID: docType.ID,
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	_, err = svc.DownloadLink(context.Background(), document.ID, user.ID)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected not found for document without file, got %v", err)
	}
}

func TestDeleteDocumentCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestDocumentService(db, &fakeGateway{})
	regSvc := NewRegistrationService(db)
	user := createTestUser(t, db, "owner@example.com")
	category := createTestCategory(t, db, "Contract")
	docType := createTestType(t, db, "Intern")

	document, err := svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
		Title:          "Lease",
		CategoryID:     category.ID,
		DocumentTypeID: docType.ID,
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if _, err := svc.UploadFile(context.Background(), document.ID, user.ID, "lease.pdf", strings.NewReader("v1")); err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}
	if _, err := regSvc.CreateRegistration(document.ID, user.ID, &models.RegistrationCreateRequest{RegistrationNumber: "REG-1"}); err != nil {
		t.Fatalf("CreateRegistration failed: %v", err)
	}

	if err := svc.DeleteDocument(document.ID, user.ID); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}

	var files, registrations int64
	db.Model(&models.DocumentFile{}).Where("document_id = ?", document.ID).Count(&files)
	db.Model(&models.Registration{}).Where("document_id = ?", document.ID).Count(&registrations)
	if files != 0 || registrations != 0 {
		t.Errorf("Expected cascade to remove children, got %d files, %d registrations", files, registrations)
	}
}

func TestGetDocumentsFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestDocumentService(db, &fakeGateway{})
	user := createTestUser(t, db, "owner@example.com")
	contracts := createTestCategory(t, db, "Contract")
	invoices := createTestCategory(t, db, "Factura")
	docType := createTestType(t, db, "Intern")

	for _, doc := range []struct {
		title    string
		category uint
		number   string
	}{
		{"Lease agreement", contracts.ID, "REG-100"},
		{"Office lease", contracts.ID, "REG-200"},
		{"Invoice march", invoices.ID, "REG-300"},
	} {
		_, err := svc.CreateDocument(user.ID, &models.DocumentCreateRequest{
			Title:              doc.title,
			CategoryID:         doc.category,
			DocumentTypeID:     docType.ID,
			RegistrationNumber: doc.number,
		})
		if err != nil {
			t.Fatalf("CreateDocument failed: %v", err)
		}
	}

	byCategory, err := svc.GetDocuments(user.ID, &models.DocumentListRequest{CategoryID: &contracts.ID})
	if err != nil {
		t.Fatalf("GetDocuments failed: %v", err)
	}
	if len(byCategory) != 2 {
		t.Errorf("Expected 2 contract documents, got %d", len(byCategory))
	}

	byTitle, err := svc.GetDocuments(user.ID, &models.DocumentListRequest{Title: "lease"})
	if err != nil {
		t.Fatalf("GetDocuments failed: %v", err)
	}
	if len(byTitle) != 2 {
		t.Errorf("Expected 2 documents matching title substring, got %d", len(byTitle))
	}

	byNumber, err := svc.GetDocuments(user.ID, &models.DocumentListRequest{RegistrationNumber: "REG-3"})
	if err != nil {
		t.Fatalf("GetDocuments failed: %v", err)
	}
	if len(byNumber) != 1 || byNumber[0].Title != "Invoice march" {
		t.Errorf("Expected registration-number filter to match the invoice, got %+v", byNumber)
	}
}
