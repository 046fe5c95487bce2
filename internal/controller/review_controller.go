package controller

import (
	"errors"

	"course_hub_backend/internal/service"
	"course_hub_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReviewController struct {
	ReviewService *service.ReviewService
}

func NewReviewController(reviewService *service.ReviewService) *ReviewController {
	return &ReviewController{ReviewService: reviewService}
}

// @Summary List reviews for a course
// @Tags reviews
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/reviews [get]
func (c *ReviewController) GetCourseReviews(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))

	reviews, err := c.ReviewService.GetCourseReviews(courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, reviews)
}

// @Summary Create a review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Router /api/reviews [post]
func (c *ReviewController) CreateReview(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	review, err := c.ReviewService.CreateReview(claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrEnrollmentNotFound):
			util.BadRequest(ctx, "you must be enrolled in the course to review it")
		case errors.Is(err, util.ErrAlreadyReviewed):
			util.Error(ctx, 409, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, review)
}

// @Summary Delete a review
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Success 200 {object} util.Response
// @Router /api/admin/reviews/{id} [delete]
func (c *ReviewController) DeleteReview(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	if err := c.ReviewService.DeleteReview(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx, "review not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deletedId": id})
}
