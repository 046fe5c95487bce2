package service

import (
	"course_hub_backend/internal/model"
	"course_hub_backend/internal/repository"
	"course_hub_backend/internal/util"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type CategoryService struct {
	CategoryRepo *repository.CategoryRepository
}

func NewCategoryService(categoryRepo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{CategoryRepo: categoryRepo}
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

func (s *CategoryService) CreateCategory(req CategoryRequest) (*model.Category, error) {
	category := &model.Category{
		Name:        req.Name,
		Slug:        slugify(req.Name),
		Description: req.Description,
	}
	if err := s.CategoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) ListCategories() ([]model.Category, error) {
	return s.CategoryRepo.FindAll()
}

func (s *CategoryService) UpdateCategory(id uint, req CategoryRequest) (*model.Category, error) {
	category, err := s.CategoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCategoryNotFound
		}
		return nil, err
	}

	category.Name = req.Name
	category.Slug = slugify(req.Name)
	if req.Description != "" {
		category.Description = req.Description
	}

	return category, s.CategoryRepo.Update(category)
}

func (s *CategoryService) DeleteCategory(id uint) error {
	if _, err := s.CategoryRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCategoryNotFound
		}
		return err
	}
	return s.CategoryRepo.Delete(id)
}

func slugify(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}
