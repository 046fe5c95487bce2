package controller

import (
	"errors"

	"course_hub_backend/internal/service"
	"course_hub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertificateService *service.CertificateService
}

func NewCertificateController(certificateService *service.CertificateService) *CertificateController {
	return &CertificateController{CertificateService: certificateService}
}

// @Summary Issue a certificate for a completed enrollment
// @Tags certificates
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Failure 409 {object} util.ErrorResponse
// @Router /api/enrollments/{id}/certificate [post]
func (c *CertificateController) IssueCertificate(ctx *gin.Context) {
	enrollmentID := util.MustParseUint(ctx.Param("id"))

	cert, err := c.CertificateService.IssueCertificate(ctx.Request.Context(), enrollmentID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrEnrollmentNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrCourseNotCompleted):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrCertificateExists):
			util.Error(ctx, 409, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, cert)
}

// @Summary List certificates earned by a user
// @Tags certificates
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} util.Response
// @Router /api/certificates/user/{userId} [get]
func (c *CertificateController) GetUserCertificates(ctx *gin.Context) {
	userID := util.MustParseUint(ctx.Param("userId"))

	certs, err := c.CertificateService.GetUserCertificates(userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, certs)
}
