package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/campusmarket/campusmarket-backend/internal/config"
	"github.com/campusmarket/campusmarket-backend/internal/handler"
	"github.com/campusmarket/campusmarket-backend/internal/middleware"
	"github.com/campusmarket/campusmarket-backend/internal/migration"
	"github.com/campusmarket/campusmarket-backend/internal/notify"
	"github.com/campusmarket/campusmarket-backend/internal/repository"
	"github.com/campusmarket/campusmarket-backend/internal/routes"
	"github.com/campusmarket/campusmarket-backend/internal/service"
	"github.com/campusmarket/campusmarket-backend/internal/ws"
	pkgcache "github.com/campusmarket/campusmarket-backend/pkg/cache"
	"github.com/campusmarket/campusmarket-backend/pkg/jwt"
	pkglogger "github.com/campusmarket/campusmarket-backend/pkg/logger"
	pkgredis "github.com/campusmarket/campusmarket-backend/pkg/redis"
	pkgstorage "github.com/campusmarket/campusmarket-backend/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           CampusMarket API
// @version         1.0
// @description     Campus marketplace backend with listings, direct messaging and live chat
//
// @license.name    MIT
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	pkglogger.Init()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	// MySQL
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Redis is optional: without it rate limiting and cross-instance
	// fan-out are disabled but the server still works on one node.
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Info("Warning: Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}

	// Live chat hub
	wsHub := ws.NewHub(redisClient)
	go wsHub.Run()
	defer wsHub.Stop()

	// Notification queue
	var dispatcher notify.Dispatcher = notify.NopDispatcher{}
	if redisClient != nil {
		dispatcher = notify.NewAsynqDispatcher(
			fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Notify.Queue,
		)
	}
	defer dispatcher.Close()

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn())

	imageStore, err := initStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to init image storage: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Services
	authSvc := service.NewAuthService(userRepo, jwtManager, cfg.OAuth)
	listingSvc := service.NewListingService(listingRepo, imageStore, pkgcache.NewService(redisClient))
	threadSvc := service.NewThreadService(threadRepo, listingRepo)
	messageSvc := service.NewMessageService(messageRepo, threadRepo, wsHub, dispatcher)
	reportSvc := service.NewReportService(reportRepo, listingRepo, userRepo, dispatcher, cfg.Notify.AdminEmail)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, cfg)
	listingHandler := handler.NewListingHandler(listingSvc)
	threadHandler := handler.NewThreadHandler(threadSvc, messageSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	adminHandler := handler.NewAdminHandler(authSvc, reportSvc, listingSvc)
	wsHandler := handler.NewWSHandler(wsHub, threadSvc, jwtManager, cfg.CORS.AllowOrigins)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS
	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = cfg.Server.FrontendURL
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:           86400,
	}))

	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "campusmarket-backend",
			"time":    time.Now().Unix(),
		})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Locally stored images are served straight off disk
	if !cfg.Storage.Enabled {
		router.Static("/static/images", cfg.Storage.LocalDir)
	}

	routes.Setup(
		router,
		authHandler,
		listingHandler,
		threadHandler,
		reportHandler,
		adminHandler,
		wsHandler,
		jwtManager,
		redisClient,
	)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		pkglogger.Info("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	pkglogger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		pkglogger.Error("Forced shutdown: %v", err)
	}
}

// initDB opens the MySQL connection pool
func initDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}
	if cfg.IsDevelopment() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	return db, nil
}

// initStorage picks S3-compatible storage when configured, local disk otherwise
func initStorage(cfg *config.Config) (pkgstorage.ImageStore, error) {
	if cfg.Storage.Enabled {
		return pkgstorage.NewS3Store(pkgstorage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			CDNURL:          cfg.Storage.CDNURL,
			BasePath:        cfg.Storage.BasePath,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		})
	}
	return pkgstorage.NewLocalStore(cfg.Storage.LocalDir, "/static/images")
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
