package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dealflow_backend/internal/auth"
	"dealflow_backend/internal/cache"
	"dealflow_backend/internal/calendar"
	"dealflow_backend/internal/config"
	"dealflow_backend/internal/database"
	"dealflow_backend/internal/handlers"
	"dealflow_backend/internal/logger"
	"dealflow_backend/internal/middleware"
	"dealflow_backend/internal/models"
	"dealflow_backend/internal/repositories"
	"dealflow_backend/internal/routes"
	"dealflow_backend/internal/secrets"
	"dealflow_backend/internal/services"
	"dealflow_backend/internal/validator"
	"dealflow_backend/internal/workers"
	"dealflow_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func Run() {
	cfg := config.GetConfig()
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(cfg.Server.Env == "development")
	auth.InitJWT(cfg.JWT.Secret)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Database migration failed", "error", err)
	}
	logger.Info("Database connected")

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serviceContainer := initializeServices(cfg, gormDB)
	ginRouter := SetupRouter(cfg, gormDB, serviceContainer)
	startWorkers(ctx, cfg, gormDB, serviceContainer)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Database close error", "error", err)
	}
	logger.Info("Server stopped")
}

// SetupRouter builds the gin engine with middleware and every route.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, serviceContainer *services.ServiceContainer) *gin.Engine {
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	appHandlers := initializeHandlers(serviceContainer)
	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)
	return ginRouter
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB) *services.ServiceContainer {
	key, err := cfg.TokenKey()
	if err != nil {
		logger.Fatal("Invalid token encryption key", "error", err)
	}
	box, err := secrets.NewBox(key)
	if err != nil {
		logger.Fatal("Failed to initialize token sealing", "error", err)
	}
	if !box.Enabled() {
		logger.Warn("TOKEN_ENCRYPTION_KEY is not set; calendar tokens are stored unsealed")
	}

	// --- Repositories ---
	userRepo := repositories.NewUserRepository(gormDB)
	profileRepo := repositories.NewProfileRepository(gormDB)
	availabilityRepo := repositories.NewAvailabilityRepository(gormDB)
	credentialRepo := repositories.NewCredentialRepository(gormDB, box)
	meetingRepo := repositories.NewMeetingRepository(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)

	// --- Calendar ---
	var (
		connector services.CalendarConnector
		refresher calendar.TokenRefresher
	)
	if cfg.GoogleEnabled() {
		oauthConfig := calendar.NewOAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL, cfg.Google.Scopes)
		connector = calendar.NewOAuthFlow(oauthConfig, credentialRepo)
		refresher = calendar.NewOAuthRefresher(oauthConfig)
		logger.Info("Google Calendar integration enabled")
	} else {
		logger.Warn("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set; calendar connect is disabled")
	}

	calendarAdapter := calendar.NewAdapter(
		calendar.NewGoogleProvider(),
		credentialRepo,
		meetingRepo,
		refresher,
		calendar.AdapterOptions{
			RequestTimeout:    cfg.Calendar.RequestTimeout,
			DefaultCalendarID: cfg.Calendar.DefaultCalendarID,
			DisableConference: cfg.Calendar.DisableConference,
		},
	)

	// --- Services ---
	scoreCache := cache.NewMemoryScoreCache(cfg.Matching.CacheTTL, nil)
	notificationService := services.NewNotificationService(notificationRepo)
	availabilityService := services.NewAvailabilityService(availabilityRepo, cfg.Scheduler.MeetingDuration)
	schedulerService := services.NewSchedulerService(
		userRepo,
		meetingRepo,
		availabilityService,
		calendarAdapter,
		notificationService,
		services.SchedulerOptions{
			PairDelay:  cfg.Scheduler.PairDelay,
			RunTimeout: cfg.Scheduler.RunTimeout,
		},
	)

	return &services.ServiceContainer{
		UserService:         services.NewUserService(userRepo),
		MatchingService:     services.NewMatchingService(profileRepo, scoreCache),
		AvailabilityService: availabilityService,
		CalendarService:     services.NewCalendarService(connector, calendarAdapter),
		SchedulerService:    schedulerService,
		MeetingService:      services.NewMeetingService(meetingRepo, userRepo, calendarAdapter, notificationService),
		NotificationService: notificationService,
	}
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		HealthHandler:       handlers.NewHealthHandler(baseHandler),
		MatchingHandler:     handlers.NewMatchingHandler(baseHandler, services.MatchingService),
		AvailabilityHandler: handlers.NewAvailabilityHandler(baseHandler, services.AvailabilityService),
		CalendarHandler:     handlers.NewCalendarHandler(baseHandler, services.CalendarService),
		SchedulingHandler:   handlers.NewSchedulingHandler(baseHandler, services.UserService, services.SchedulerService),
		MeetingHandler:      handlers.NewMeetingHandler(baseHandler, services.MeetingService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, services.NotificationService),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}

// startWorkers runs the optional auto-arrangement ticker and the meeting
// completion sweep until ctx is cancelled.
func startWorkers(ctx context.Context, cfg *config.Config, gormDB *gorm.DB, serviceContainer *services.ServiceContainer) {
	workers.NewMeetingWorker(repositories.NewMeetingRepository(gormDB), time.Hour).Start(ctx)

	if !cfg.Scheduler.Enabled {
		logger.Info("Scheduler worker disabled; use POST /api/v1/admin/scheduler/run to trigger runs")
		return
	}
	workers.NewSchedulerWorker(serviceContainer.SchedulerService, cfg.Scheduler.Interval).Start(ctx)
}

// seedFirstAdmin creates the configured admin account once. Tokens for it are
// issued by the identity service, like for every other user.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	if adminEmail == "" {
		logger.Warn("FIRST_ADMIN_EMAIL is not set. Skipping admin seeding.")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var adminUser models.User
		err := tx.Where("email = ?", adminEmail).First(&adminUser).Error
		if err == nil {
			logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check for admin user: %w", err)
		}

		newAdmin := &models.User{
			Email:  adminEmail,
			Name:   "Administrator",
			Role:   models.UserRoleAdmin,
			Status: models.UserStatusActive,
		}
		if err := tx.Create(newAdmin).Error; err != nil {
			return fmt.Errorf("failed to create admin user in database: %w", err)
		}

		logger.Info("Created first admin user", "email", adminEmail, "user_id", newAdmin.ID)
		return nil
	})
}
