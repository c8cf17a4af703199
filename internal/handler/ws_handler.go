package handler

import (
	"net/http"
	"strings"

	"github.com/campusmarket/campusmarket-backend/internal/middleware"
	"github.com/campusmarket/campusmarket-backend/internal/service"
	"github.com/campusmarket/campusmarket-backend/internal/ws"
	"github.com/campusmarket/campusmarket-backend/pkg/jwt"
	pkglogger "github.com/campusmarket/campusmarket-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades live-chat connections
type WSHandler struct {
	hub            *ws.Hub
	threads        service.ThreadService
	jwtManager     *jwt.Manager
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *ws.Hub, threads service.ThreadService, jwtManager *jwt.Manager, allowedOrigins string) *WSHandler {
	h := &WSHandler{
		hub:            hub,
		threads:        threads,
		jwtManager:     jwtManager,
		allowedOrigins: parseOrigins(allowedOrigins),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// parseOrigins parses comma-separated origins string
func parseOrigins(origins string) []string {
	if origins == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// checkOrigin validates the request origin against allowed origins
func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // Same-origin requests don't have Origin header
	}

	// If no allowed origins configured, allow all (development mode)
	if len(h.allowedOrigins) == 0 {
		return true
	}

	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}

	return false
}

// Connect handles GET /ws/:thread_id and upgrades to a WebSocket.
// Browsers cannot set an Authorization header on a WebSocket request, so
// the session token rides in the "token" query parameter. Only the
// thread's buyer or seller may attach; anyone else sees the same 404 as
// for a thread that does not exist.
// @Summary      Live conversation channel
// @Tags         threads
// @Param        thread_id  path   string  true  "thread ID"
// @Param        token      query  string  true  "session token"
// @Router       /ws/{thread_id} [get]
func (h *WSHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}
	claims, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	threadID := c.Param("thread_id")
	if _, err := h.threads.GetForParticipant(threadID, claims.UserID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("thread_id", threadID).Msg("websocket upgrade")
		return
	}

	client := ws.NewClient(h.hub, conn, threadID, claims.UserID)
	h.hub.Subscribe(threadID, client)
	middleware.WSConnectionOpened()

	go client.WritePump()
	client.ReadPump()
	middleware.WSConnectionClosed()
}
