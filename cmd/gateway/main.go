package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-platform/internal/api/handlers"
	"auction-platform/internal/bidding"
	"auction-platform/internal/config"
	"auction-platform/internal/infrastructure/leader"
	"auction-platform/internal/infrastructure/mysql"
	"auction-platform/internal/infrastructure/redis"
	"auction-platform/internal/services"
	"auction-platform/pkg/logger"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	log := logger.New()
	log.Info("Starting auction gateway")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}(db)

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to MySQL")

	// Stores and Redis-backed collaborators
	auctionStore := mysql.NewAuctionStore(db)
	bidStore := mysql.NewBidStore(db)
	schedulerStore := mysql.NewSchedulerStore(db)

	highestBidCache := redis.NewHighestBidCache(rdb)
	eventPublisher := redis.NewEventPublisher(rdb)

	leaderElection := leader.NewRedisLeaderElection(rdb, cfg.Leader.TTL)

	// Lifecycle manager and scheduler reference each other; the scheduler is
	// set after construction.
	auctionManager := services.NewAuctionManager(
		auctionStore,
		eventPublisher,
		nil,
		leaderElection,
		cfg.Instance.ID,
		log,
	)
	scheduler := services.NewCronAuctionScheduler(schedulerStore, auctionManager, log)
	auctionManager.SetScheduler(scheduler)

	// The bidding engine
	engine := bidding.NewEngine(
		auctionStore,
		highestBidCache,
		eventPublisher,
		scheduler,
		bidding.Options{
			CacheTTL:           cfg.Bidding.CacheTTL,
			ExtensionThreshold: cfg.Bidding.ExtensionThreshold,
			ExtensionWindow:    cfg.Bidding.ExtensionWindow,
			MaxExtensions:      cfg.Bidding.MaxExtensions,
			LockWait:           cfg.Bidding.LockWait,
			CommitRetries:      cfg.Bidding.CommitRetries,
		},
		log,
	)
	reader := bidding.NewReader(auctionStore, highestBidCache, cfg.Bidding.CacheTTL, log)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH,
			echo.POST, echo.DELETE, echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"X-User-ID",
		},
	}))

	auctionHandler := handlers.NewAuctionHandler(auctionManager, log)
	bidHandler := handlers.NewBidHandler(engine, reader, bidStore, log)

	api := e.Group("/api/v1")
	api.POST("/auctions", auctionHandler.CreateAuction)
	api.GET("/auctions/:id", auctionHandler.GetAuction)
	api.POST("/auctions/:id/schedule", auctionHandler.ScheduleAuction)
	api.POST("/auctions/:id/cancel", auctionHandler.CancelAuction)
	api.POST("/auctions/:id/bids", bidHandler.PlaceBid)
	api.GET("/auctions/:id/highest-bid", bidHandler.GetHighestBid)
	api.GET("/auctions/:id/bids", bidHandler.GetBids)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "gateway",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	go func() {
		if err := scheduler.Start(context.Background()); err != nil {
			log.Error("Failed to start scheduler", "error", err)
		}
	}()

	// Keep trying for leadership; scheduled lifecycle transitions only fire
	// on the leader.
	go func() {
		for {
			became, err := leaderElection.BecomeLeader(context.Background(), cfg.Instance.ID)
			if err != nil {
				log.Error("Failed to attempt leadership", "error", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if became {
				log.Info("Became lifecycle leader", "instance_id", cfg.Instance.ID)
			}
			time.Sleep(10 * time.Second)
		}
	}()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		log.Info("Starting gateway server", "address", serverAddr)
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gateway...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := scheduler.Stop(); err != nil {
		log.Error("Failed to stop scheduler", "error", err)
	}
	if err := leaderElection.ReleaseLeadership(ctx, cfg.Instance.ID); err != nil {
		log.Error("Failed to release leadership", "error", err)
	}
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Gateway stopped")
}
