package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"finsight/catalog"
	"finsight/config"
	"finsight/database"
	"finsight/events"
	"finsight/repository"
	"finsight/scheduler"
	"finsight/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting finsight report engine...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	log.Println("Initializing event bus...")
	eventBus := events.NewBus()
	log.Println("Event bus initialized successfully")

	// Initialize report catalog
	log.Println("Initializing report catalog...")
	cat, err := catalog.NewWithBuiltins()
	if err != nil {
		return fmt.Errorf("failed to initialize report catalog: %w", err)
	}
	log.Printf("Report catalog initialized with %d reports", len(cat.Names()))

	// Initialize repositories and executor
	log.Println("Initializing report executor...")
	store := repository.NewStore(db)
	runs := repository.NewReportRunRepository(db)
	executor := service.NewExecutor(cat, store, runs, eventBus, cfg.ReportTimeout)
	log.Println("Report executor initialized successfully")

	// Start background triggers
	log.Println("Starting scheduled workers...")
	sched := scheduler.New(executor)
	stopSweep := sched.StartNightlySweep(ctx, cfg.SweepHourUTC, cfg.InactivityDays)
	stopTrend := sched.StartMonthlySignupTrend(ctx, cfg.SweepHourUTC, cfg.SignupTrendMonths)
	log.Println("Scheduled workers started successfully")

	// Wait for context cancellation
	log.Printf("Report engine is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down report engine...")
	stopSweep()
	stopTrend()

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
