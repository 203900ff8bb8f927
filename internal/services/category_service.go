package services

import (
	"errors"
	"fmt"

	"docflow-backend/internal/apperrors"
	"docflow-backend/internal/models"

	"gorm.io/gorm"
)

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// GetCategories lists all categories sorted by name, each with its direct
// parent resolved. Only one level is resolved; a parent's own parent stays nil.
func (s *CategoryService) GetCategories() ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Preload("Parent").Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) CreateCategory(req *models.CategoryRequest) (*models.Category, error) {
	if req.ParentID != nil {
		var count int64
		if err := s.db.Model(&models.Category{}).Where("id = ?", *req.ParentID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check parent category: %w", err)
		}
		if count == 0 {
			return nil, apperrors.Validation("Invalid parentId")
		}
	}

	category := models.Category{
		Name:     req.Name,
		ParentID: req.ParentID,
	}

	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	return &category, nil
}

func (s *CategoryService) UpdateCategory(categoryID uint, req *models.CategoryRequest) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Category not found")
		}
		return nil, fmt.Errorf("find category: %w", err)
	}

	if req.ParentID != nil && *req.ParentID == categoryID {
		return nil, apperrors.Validation("Category cannot be its own parent")
	}

	updates := map[string]interface{}{
		"name":      req.Name,
		"parent_id": req.ParentID,
	}
	if err := s.db.Model(&category).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	return &category, nil
}

// DeleteCategory removes a category. Deletion is guarded twice: the category
// must have no attached documents and no child categories.
func (s *CategoryService) DeleteCategory(categoryID uint) error {
	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Category not found")
		}
		return fmt.Errorf("find category: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.Document{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("check category usage: %w", err)
	}
	if count > 0 {
		return apperrors.Conflict("Category is in use")
	}

	if err := s.db.Model(&models.Category{}).Where("parent_id = ?", categoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("check subcategories: %w", err)
	}
	if count > 0 {
		return apperrors.Conflict("Category has subcategories")
	}

	if err := s.db.Delete(&category).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	return nil
}
