package handler

import (
	"net/http"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/campusmarket/campusmarket-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles moderator endpoints
type AdminHandler struct {
	auth     service.AuthService
	reports  service.ReportService
	listings service.ListingService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(auth service.AuthService, reports service.ReportService, listings service.ListingService) *AdminHandler {
	return &AdminHandler{auth: auth, reports: reports, listings: listings}
}

// ListUsers handles GET /api/v1/admin/users
// @Summary      All registered users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.auth.ListUsers()
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Data: users})
}

// ListReported handles GET /api/v1/admin/reports
// @Summary      Listings with open reports
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Router       /admin/reports [get]
func (h *AdminHandler) ListReported(c *gin.Context) {
	listings, err := h.reports.ListReportedListings()
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Data: listings})
}

// ListingReports handles GET /api/v1/admin/listings/:id/reports
// @Summary      Reports filed against one listing
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Listing ID"
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /admin/listings/{id}/reports [get]
func (h *AdminHandler) ListingReports(c *gin.Context) {
	reports, err := h.reports.ListForListing(c.Param("id"))
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Data: reports})
}
