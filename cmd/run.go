package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"luckywheel/api"
	"luckywheel/config"
	"luckywheel/database"
	"luckywheel/events"
	"luckywheel/repository"
	"luckywheel/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting luckywheel draw engine...")

	// Load configuration
	cfg := config.Get()

	// Configure structured logging
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus and subscribers
	eventBus := events.NewBus()
	registerEventHandlers(eventBus)

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Pool-backed repositories for the post-commit draw phase
	prizeRepo := repository.NewPrizeRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	winnerRepo := repository.NewWinnerRepository(db)

	// Initialize services
	log.Println("Initializing services...")
	drawService := service.NewDrawService(uowFactory, prizeRepo, participantRepo, winnerRepo, eventBus, cfg.ClaimGracePeriod)
	claimService := service.NewClaimService(uowFactory)
	campaignService := service.NewCampaignService(uowFactory)

	// Background janitor for overdue pending claims
	go runClaimJanitor(ctx, claimService, cfg.ClaimSweepInterval)

	// Set up the HTTP server
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger())
	api.NewHandler(drawService, claimService, campaignService).RegisterRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s in %s mode...", cfg.Port, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server failure
	select {
	case err := <-serverErr:
		db.Close()
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}

// registerEventHandlers wires logging and alerting onto the event bus
func registerEventHandlers(bus *events.Bus) {
	bus.Subscribe(events.EventTypeDrawCompleted, func(ctx context.Context, event events.Event) {
		e := event.(events.DrawCompletedEvent)
		logrus.WithFields(logrus.Fields{
			"winnerID":   e.WinnerID,
			"campaignID": e.CampaignID,
			"prizeID":    e.PrizeID,
			"prizeName":  e.PrizeName,
		}).Info("Draw completed")
	})

	bus.Subscribe(events.EventTypePrizeExhausted, func(ctx context.Context, event events.Event) {
		e := event.(events.PrizeExhaustedEvent)
		logrus.WithFields(logrus.Fields{
			"prizeID":    e.PrizeID,
			"campaignID": e.CampaignID,
			"prizeName":  e.PrizeName,
		}).Info("Prize stock exhausted")
	})

	bus.Subscribe(events.EventTypeCompensationFailed, func(ctx context.Context, event events.Event) {
		e := event.(events.CompensationFailedEvent)
		// Stock is off by one until repaired; this needs operator attention.
		logrus.WithFields(logrus.Fields{
			"prizeID":    e.PrizeID,
			"campaignID": e.CampaignID,
			"reason":     e.Reason,
		}).Error("Stock compensation failed")
	})
}

// runClaimJanitor periodically expires overdue pending claims
func runClaimJanitor(ctx context.Context, claims service.ClaimService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := claims.ExpireOverdue(ctx)
			if err != nil {
				logrus.WithError(err).Warn("Claim expiry sweep failed")
				continue
			}
			if expired > 0 {
				logrus.WithField("count", expired).Info("Expired overdue claims")
			}
		}
	}
}
