package handler

import (
	"net/http"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"github.com/campusmarket/campusmarket-backend/internal/middleware"
	"github.com/campusmarket/campusmarket-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles listing reports
type ReportHandler struct {
	service service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service service.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Create handles POST /api/v1/listings/:id/report
// @Summary      Report a listing
// @Description  Flags a listing for moderator review and emails the moderators
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                       true  "listing ID"
// @Param        body  body  domain.CreateReportRequest  true  "reason"
// @Success      201  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /listings/{id}/report [post]
func (h *ReportHandler) Create(c *gin.Context) {
	var req domain.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	report, err := h.service.Create(c.Param("id"), middleware.GetUserID(c), req.Reason)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, common.APIResponse{Data: report})
}
