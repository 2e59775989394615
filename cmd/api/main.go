package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pphilfre/stake-sub000/internal/config"
	"github.com/pphilfre/stake-sub000/internal/handlers"
	"github.com/pphilfre/stake-sub000/internal/middleware"
	"github.com/pphilfre/stake-sub000/internal/rng"
	"github.com/pphilfre/stake-sub000/internal/services"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Redis is optional: without it every session is a guest session.
	var redisService *services.RedisService
	if cfg.RedisURL != "" {
		redisService, err = services.NewRedisService(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisService.Close()
	}

	authService := services.NewAuthService(cfg.AdminPIN, cfg.JWTSecret)
	settingsStore := services.NewSettingsStore(authService)
	sessionManager := services.NewSessionManager(redisService, cfg.StartingBalance, log)

	src := rng.New()
	engine := services.NewWagerEngine(settingsStore, src, log)
	roundService := services.NewRoundService(engine, src, log)

	gameHandler := handlers.NewGameHandler(engine, sessionManager, settingsStore)
	roundHandler := handlers.NewRoundHandler(roundService, sessionManager)
	adminHandler := handlers.NewAdminHandler(authService, settingsStore)
	wsHandler := handlers.NewWebSocketHandler(engine, sessionManager, log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	api := router.Group("/api")
	{
		api.GET("/ws", wsHandler.HandleWebSocket)
		api.GET("/currencies", gameHandler.ListCurrencies)

		wallet := api.Group("/wallet")
		{
			wallet.GET("/balance", gameHandler.GetBalance)
			wallet.POST("/deposit", gameHandler.Deposit)
			wallet.POST("/withdraw", gameHandler.Withdraw)
		}

		games := api.Group("/games")
		{
			games.GET("", gameHandler.ListGames)
			games.POST("/wager", gameHandler.PlaceWager)
			games.GET("/history", gameHandler.GetHistory)
			games.GET("/settings/:game", gameHandler.GetSettings)

			mines := games.Group("/mines")
			{
				mines.POST("/open", roundHandler.OpenMines)
				mines.POST("/reveal", roundHandler.RevealMine)
				mines.POST("/cashout", roundHandler.CashoutMines)
			}

			blackjack := games.Group("/blackjack")
			{
				blackjack.POST("/deal", roundHandler.OpenBlackjack)
				blackjack.POST("/hit", roundHandler.HitBlackjack)
				blackjack.POST("/stand", roundHandler.StandBlackjack)
				blackjack.POST("/double", roundHandler.DoubleBlackjack)
			}
		}
	}

	admin := router.Group("/admin")
	{
		admin.POST("/auth", adminHandler.Authenticate)

		protected := admin.Group("/settings")
		protected.Use(middleware.AdminAuth(authService))
		{
			protected.GET("/:game", adminHandler.GetSettings)
			protected.PUT("/:game", adminHandler.UpdateSettings)
			protected.POST("/:game/reset", adminHandler.ResetSettings)
		}
	}

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
