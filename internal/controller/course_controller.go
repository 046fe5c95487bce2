package controller

import (
	"errors"

	"course_hub_backend/internal/service"
	"course_hub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

func (c *CourseController) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound), errors.Is(err, util.ErrCategoryNotFound):
		util.NotFound(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary List published courses
// @Tags courses
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param categoryId query int false "Filter by category"
// @Param level query string false "Filter by level"
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page := int(util.MustParseUint(ctx.DefaultQuery("page", "1")))
	limit := int(util.MustParseUint(ctx.DefaultQuery("limit", "20")))
	categoryID := util.MustParseUint(ctx.Query("categoryId"))
	level := ctx.Query("level")

	courses, total, err := c.CourseService.ListCourses(page, limit, categoryID, level)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  courses,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary Get one course with its review aggregate
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.ErrorResponse
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	detail, err := c.CourseService.GetCourse(ctx.Request.Context(), id)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}

// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param course body service.CreateCourseRequest true "Course data"
// @Success 201 {object} util.Response
// @Router /api/admin/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.CreateCourse(claims.UserID, req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.ErrorResponse
// @Router /api/admin/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	var req service.UpdateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.UpdateCourse(ctx.Request.Context(), id, req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// @Summary Delete a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.ErrorResponse
// @Router /api/admin/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	if err := c.CourseService.DeleteCourse(ctx.Request.Context(), id); err != nil {
		c.respondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deletedId": id})
}
