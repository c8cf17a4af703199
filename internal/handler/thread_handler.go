package handler

import (
	"net/http"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"github.com/campusmarket/campusmarket-backend/internal/middleware"
	"github.com/campusmarket/campusmarket-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ThreadHandler handles conversation threads and their messages
type ThreadHandler struct {
	threads  service.ThreadService
	messages service.MessageService
}

// NewThreadHandler creates a new ThreadHandler
func NewThreadHandler(threads service.ThreadService, messages service.MessageService) *ThreadHandler {
	return &ThreadHandler{threads: threads, messages: messages}
}

// GetOrCreate handles POST /api/v1/threads/:listing_id
// @Summary      Open a conversation about a listing
// @Description  Returns the caller's thread for the listing, creating it on first contact. Repeat calls return the same thread.
// @Tags         threads
// @Produce      json
// @Security     BearerAuth
// @Param        listing_id  path  string  true  "listing ID"
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /threads/{listing_id} [post]
func (h *ThreadHandler) GetOrCreate(c *gin.Context) {
	thread, err := h.threads.GetOrCreate(c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Data: thread})
}

// List handles GET /api/v1/threads
// @Summary      My conversations
// @Description  Threads the caller participates in, most recently active first. The counterpart's name is masked by role.
// @Tags         threads
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.APIResponse
// @Router       /threads [get]
func (h *ThreadHandler) List(c *gin.Context) {
	threads, err := h.threads.ListForUser(middleware.GetUserID(c))
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Data: threads})
}

// ListMessages handles GET /api/v1/threads/:thread_id/messages
// @Summary      Conversation history
// @Description  Full message history in send order. Participants only.
// @Tags         threads
// @Produce      json
// @Security     BearerAuth
// @Param        thread_id  path  string  true  "thread ID"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /threads/{thread_id}/messages [get]
func (h *ThreadHandler) ListMessages(c *gin.Context) {
	messages, err := h.messages.List(c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Data: messages})
}

// PostMessage handles POST /api/v1/threads/:thread_id/messages
// @Summary      Send a message
// @Description  Appends to the conversation, pushes to connected participants and queues an email for the counterpart.
// @Tags         threads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        thread_id  path  string                      true  "thread ID"
// @Param        body       body  domain.PostMessageRequest  true  "message body"
// @Success      201  {object}  common.APIResponse
// @Failure      400  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /threads/{thread_id}/messages [post]
func (h *ThreadHandler) PostMessage(c *gin.Context) {
	var req domain.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	msg, err := h.messages.Post(c.Param("id"), middleware.GetUserID(c), req.Body)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	middleware.MessagePosted()
	c.JSON(http.StatusCreated, common.APIResponse{Data: msg})
}
