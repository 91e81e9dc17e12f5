package main

import (
	"context"
	"net/http"
	"time"

	"github.com/ArturTovmasyan/ministry-backend/config"
	"github.com/ArturTovmasyan/ministry-backend/database"
	adminctrl "github.com/ArturTovmasyan/ministry-backend/internal/controller/admin"
	userctrl "github.com/ArturTovmasyan/ministry-backend/internal/controller/user"
	webhookctrl "github.com/ArturTovmasyan/ministry-backend/internal/controller/webhook"
	"github.com/ArturTovmasyan/ministry-backend/internal/logger"
	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"github.com/ArturTovmasyan/ministry-backend/internal/repository"
	"github.com/ArturTovmasyan/ministry-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			database.NewRedisClient,
			NewGinEngine,
		),

		// Repositories Layer
		fx.Provide(
			repository.NewUserRepository,
			repository.NewTestRepository,
			repository.NewAnswerRepository,
			repository.NewAssignTestRepository,
			repository.NewPassedQuestionRepository,
			repository.NewChallengeTestRepository,
			repository.NewChallengeTestHistoryRepository,
			repository.NewEventLogRepository,
			repository.NewSubscriptionRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewSystemClock,
			// The notifier degrades to a log sink when redis is absent.
			func(redisClient *redis.Client) service.Notifier {
				if redisClient == nil {
					return service.NewLogNotifier()
				}
				return service.NewRedisNotifier(redisClient)
			},
			service.NewLeaderboardService,
			service.NewChallengeTestService,
			service.NewScoreService,
			service.NewEventProcessor,
			service.NewBillingService,
			service.NewTestService,
			func(challengeService service.ChallengeTestService, cfg *config.Config) *service.Sweeper {
				return service.NewSweeper(challengeService, cfg.Sweep.Interval)
			},
		),

		// API Controllers Layer
		fx.Provide(
			adminctrl.NewAdminTestController,
			userctrl.NewChallengeTestController,
			userctrl.NewPassTestController,
			webhookctrl.NewWebhookController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(StartSweeper),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	adminTestCtrl *adminctrl.AdminTestController,
	challengeTestCtrl *userctrl.ChallengeTestController,
	passTestCtrl *userctrl.PassTestController,
	webhookCtrl *webhookctrl.WebhookController,
) {
	// Admin Routes (prefixed with /api/v1/admin)
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		testsAdminGroup := adminAPIGroup.Group("/tests")
		testsAdminGroup.POST("", adminTestCtrl.CreateTest)
		testsAdminGroup.GET("", adminTestCtrl.GetAllTests)
		testsAdminGroup.GET("/:test_id", adminTestCtrl.GetTestDetails)
	}

	// User Routes (prefixed with /api/v1)
	userAPIGroup := router.Group("/api/v1")
	{
		userAPIGroup.POST("/challenge-test/create", challengeTestCtrl.CreateChallenge)
		userAPIGroup.GET("/challenge-test/ranking", challengeTestCtrl.GetRanking)
		userAPIGroup.GET("/challenge-test/:challenge_test_id/check-time-limit", challengeTestCtrl.CheckTimeLimit)

		userAPIGroup.POST("/pass-question", passTestCtrl.PassQuestion)
		userAPIGroup.POST("/assign-test/:assign_test_id/finish", passTestCtrl.FinishTest)
	}

	// Public routes hit from emailed links, no auth middleware.
	router.GET("/api/public/v1/confirm/challenge-test", challengeTestCtrl.ConfirmChallenge)

	// Billing provider webhook.
	router.POST("/api/v1/webhook/billing", webhookCtrl.HandleBillingEvent)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Ministry API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Test{},
		&model.Question{},
		&model.Answer{},
		&model.AssignTest{},
		&model.PassedQuestion{},
		&model.ChallengeTest{},
		&model.ChallengeTestHistory{},
		&model.Subscription{},
		&model.EventLog{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}

// StartSweeper ties the expired-challenge sweep to the app lifecycle.
func StartSweeper(lc fx.Lifecycle, sweeper *service.Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sweeper.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}
