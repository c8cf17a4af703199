package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse standard API response structure
type APIResponse struct {
	Data  interface{} `json:"data"`
	Meta  *Meta       `json:"meta,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
}

// Meta pagination and additional metadata
type Meta struct {
	Page  int   `json:"page,omitempty"`
	Limit int   `json:"limit,omitempty"`
	Total int64 `json:"total,omitempty"`
}

// ErrorInfo error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse returns a successful JSON response
func SuccessResponse(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{
		Data: data,
		Meta: meta,
	})
}

// ErrorResponse returns an error JSON response
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	errInfo := &ErrorInfo{
		Code:    getErrorCode(status),
		Message: message,
	}

	c.JSON(status, gin.H{
		"error": errInfo,
	})
}

// ServiceError maps a service-layer error to the proper HTTP response.
// NotFound deliberately covers both absence and lack of visibility.
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrListingNotFound),
		errors.Is(err, ErrThreadNotFound), errors.Is(err, ErrUserNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrSelfMessage):
		ErrorResponse(c, http.StatusForbidden, err.Error(), err)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyBody),
		errors.Is(err, ErrTooManyImages), errors.Is(err, ErrBadImageType):
		ErrorResponse(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		ErrorResponse(c, http.StatusUnauthorized, err.Error(), err)
	case errors.Is(err, ErrUnavailable):
		ErrorResponse(c, http.StatusServiceUnavailable, err.Error(), err)
	default:
		ErrorResponse(c, http.StatusInternalServerError, "internal server error", err)
	}
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 429:
		return "RATE_LIMITED"
	case 500:
		return "INTERNAL_SERVER_ERROR"
	case 503:
		return "SERVICE_UNAVAILABLE"
	default:
		return "ERROR"
	}
}
