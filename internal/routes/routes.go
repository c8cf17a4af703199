package routes

import (
	"github.com/campusmarket/campusmarket-backend/internal/handler"
	"github.com/campusmarket/campusmarket-backend/internal/middleware"
	"github.com/campusmarket/campusmarket-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	authHandler *handler.AuthHandler,
	listingHandler *handler.ListingHandler,
	threadHandler *handler.ThreadHandler,
	reportHandler *handler.ReportHandler,
	adminHandler *handler.AdminHandler,
	wsHandler *handler.WSHandler,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
) {
	api := router.Group("/api/v1")
	api.Use(middleware.RateLimit(redisClient, middleware.DefaultRateLimitConfig()))

	// Sign-in flow (no auth required)
	auth := api.Group("/auth")
	auth.GET("/google", authHandler.GoogleLogin)
	auth.GET("/google/callback", authHandler.GoogleCallback)
	auth.GET("/me", middleware.JWTAuth(jwtManager), authHandler.Me)

	// Marketplace listings. Browsing is public, everything else needs auth.
	listings := api.Group("/listings")
	listings.GET("", listingHandler.List)
	listings.GET("/mine", middleware.JWTAuth(jwtManager), listingHandler.Mine)
	listings.GET("/:id", listingHandler.Get)
	listings.POST("", middleware.JWTAuth(jwtManager), listingHandler.Create)
	listings.DELETE("/:id", middleware.JWTAuth(jwtManager), listingHandler.Delete)
	listings.POST("/:id/report", middleware.JWTAuth(jwtManager), reportHandler.Create)

	// Conversations. The :id on POST /threads/:id is a listing ID; on the
	// message routes it is a thread ID.
	threads := api.Group("/threads", middleware.JWTAuth(jwtManager))
	threads.GET("", threadHandler.List)
	threads.POST("/:id", threadHandler.GetOrCreate)
	threads.GET("/:id/messages", threadHandler.ListMessages)
	threads.POST("/:id/messages", middleware.RateLimitPerUser(redisClient, 60), threadHandler.PostMessage)

	// Moderator endpoints
	admin := api.Group("/admin", middleware.JWTAuth(jwtManager), middleware.RequireAdmin())
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/reports", adminHandler.ListReported)
	admin.GET("/listings/:id/reports", adminHandler.ListingReports)
	admin.DELETE("/listings/:id", listingHandler.Delete)

	// Live chat. Token auth happens inside the handler because browsers
	// cannot set headers on a WebSocket upgrade request.
	router.GET("/ws/:thread_id", wsHandler.Connect)
}
