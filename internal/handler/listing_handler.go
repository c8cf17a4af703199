package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"github.com/campusmarket/campusmarket-backend/internal/middleware"
	"github.com/campusmarket/campusmarket-backend/internal/service"
	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20 // per image

// ListingHandler handles marketplace listing requests
type ListingHandler struct {
	service service.ListingService
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(service service.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// List handles GET /api/v1/listings
// @Summary      Browse listings
// @Description  Lists listings newest first, optionally filtered by title search and category
// @Tags         listings
// @Produce      json
// @Param        q         query  string  false  "title search"
// @Param        category  query  string  false  "category filter"
// @Success      200  {object}  common.APIResponse
// @Router       /listings [get]
func (h *ListingHandler) List(c *gin.Context) {
	listings, err := h.service.List(c.Query("q"), c.Query("category"))
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Data: listings})
}

// Get handles GET /api/v1/listings/:id
// @Summary      Listing detail
// @Tags         listings
// @Produce      json
// @Param        id  path  string  true  "listing ID"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /listings/{id} [get]
func (h *ListingHandler) Get(c *gin.Context) {
	listing, err := h.service.Get(c.Param("id"))
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Data: listing})
}

// Mine handles GET /api/v1/listings/mine
// @Summary      My listings
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.APIResponse
// @Router       /listings/mine [get]
func (h *ListingHandler) Mine(c *gin.Context) {
	listings, err := h.service.ListByOwner(middleware.GetUserID(c))
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Data: listings})
}

// Create handles POST /api/v1/listings, a multipart form with up to 4 images
// @Summary      Create a listing
// @Tags         listings
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title             formData  string  true   "title"
// @Param        description       formData  string  false  "description"
// @Param        price             formData  number  true   "price"
// @Param        category          formData  string  true   "category"
// @Param        main_image_index  formData  int     false  "which image is the cover"
// @Param        images            formData  file    true   "1 to 4 images"
// @Success      201  {object}  common.APIResponse
// @Failure      400  {object}  common.APIResponse
// @Router       /listings [post]
func (h *ListingHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid multipart form", err)
		return
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid price", err)
		return
	}
	mainIndex := 0
	if raw := c.PostForm("main_image_index"); raw != "" {
		mainIndex, err = strconv.Atoi(raw)
		if err != nil {
			common.ErrorResponse(c, 400, "Invalid main_image_index", err)
			return
		}
	}

	input := &service.CreateListingInput{
		Title:          c.PostForm("title"),
		Description:    c.PostForm("description"),
		Price:          price,
		Category:       domain.ListingCategory(c.PostForm("category")),
		MainImageIndex: mainIndex,
	}

	files := form.File["images"]
	opened := make([]multipart.File, 0, len(files))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range files {
		if fh.Size > maxUploadBytes {
			common.ErrorResponse(c, 400, "Image too large", nil)
			return
		}
		f, err := fh.Open()
		if err != nil {
			common.ErrorResponse(c, 400, "Could not read upload", err)
			return
		}
		opened = append(opened, f)
		input.Images = append(input.Images, service.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      f,
		})
	}

	listing, err := h.service.Create(c.Request.Context(), middleware.GetUserID(c), input)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, common.APIResponse{Data: listing})
}

// Delete handles DELETE /api/v1/listings/:id
// @Summary      Delete a listing
// @Description  Owner or moderator only. Conversations about the listing go with it.
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "listing ID"
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /listings/{id} [delete]
func (h *ListingHandler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), middleware.IsAdmin(c))
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Data: gin.H{"deleted": true}})
}
