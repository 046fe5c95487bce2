package controller

import (
	"errors"

	"course_hub_backend/internal/service"
	"course_hub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	CategoryService *service.CategoryService
}

func NewCategoryController(categoryService *service.CategoryService) *CategoryController {
	return &CategoryController{CategoryService: categoryService}
}

// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/categories [get]
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	categories, err := c.CategoryService.ListCategories()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, categories)
}

// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Router /api/admin/categories [post]
func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	var req service.CategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	category, err := c.CategoryService.CreateCategory(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, category)
}

// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} util.Response
// @Router /api/admin/categories/{id} [put]
func (c *CategoryController) UpdateCategory(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	var req service.CategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	category, err := c.CategoryService.UpdateCategory(id, req)
	if err != nil {
		if errors.Is(err, util.ErrCategoryNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, category)
}

// @Summary Delete a category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} util.Response
// @Router /api/admin/categories/{id} [delete]
func (c *CategoryController) DeleteCategory(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	if err := c.CategoryService.DeleteCategory(id); err != nil {
		if errors.Is(err, util.ErrCategoryNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deletedId": id})
}
