package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"harvester/config"
	"harvester/database"
	"harvester/events"
	"harvester/repository"
	"harvester/service"
)

// Settled deposits older than this are eligible for retention cleanup.
const depositRetention = 90 * 24 * time.Hour

// Services bundles the wired ledger services handed to the chat layer
type Services struct {
	Users         service.UserService
	Deposits      service.DepositService
	Distributions service.DistributionService
	Treasury      service.TreasuryService
	Payments      service.PaymentService
	Admin         service.AdminService
	Settings      service.SettingsService
	EventBus      *events.Bus
}

// Run initializes and starts the ledger service
func Run(ctx context.Context) error {
	log.Println("Starting harvester ledger...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	services, err := Wire(ctx, db, cfg)
	if err != nil {
		db.Close()
		return err
	}

	subscribeAuditLog(services.EventBus)

	// Periodic retention cleanup for settled deposits
	go runRetentionCleanup(ctx, services.Admin)

	log.Printf("Ledger is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Println("Shutting down ledger...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

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

// Wire builds the event bus, unit-of-work factory and every ledger service
// over an open database connection. Exposed so an embedding chat layer can
// reuse the exact production wiring.
func Wire(ctx context.Context, db *database.DB, cfg *config.Config) (*Services, error) {
	eventBus := events.NewBus()

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus, cfg.SessionMaxRetries, cfg.SessionRetryBackoff)

	settings := service.NewSettingsService(repository.NewSettingsRepository(db), cfg)
	// A failed settings load keeps documented defaults and never blocks startup
	if err := settings.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	return &Services{
		Users:         service.NewUserService(uowFactory),
		Deposits:      service.NewDepositService(uowFactory, settings),
		Distributions: service.NewDistributionService(uowFactory, settings),
		Treasury:      service.NewTreasuryService(uowFactory),
		Payments:      service.NewPaymentService(uowFactory),
		Admin:         service.NewAdminService(uowFactory),
		Settings:      settings,
		EventBus:      eventBus,
	}, nil
}

// subscribeAuditLog logs every committed ledger change
func subscribeAuditLog(bus *events.Bus) {
	bus.Subscribe(events.EventTypeDepositRecorded, func(ctx context.Context, e events.Event) {
		ev := e.(events.DepositRecordedEvent)
		log.Printf("deposit recorded: user=%d sand=%d melange=%d type=%s",
			ev.UserID, ev.SandAmount, ev.Melange, ev.DepositType)
	})
	bus.Subscribe(events.EventTypeExpeditionCompleted, func(ctx context.Context, e events.Event) {
		ev := e.(events.ExpeditionCompletedEvent)
		log.Printf("expedition completed: id=%d sand=%d participants=%d guild_sand=%d",
			ev.ExpeditionID, ev.TotalSand, ev.Participants, ev.GuildSand)
	})
	bus.Subscribe(events.EventTypeTreasuryChange, func(ctx context.Context, e events.Event) {
		ev := e.(events.TreasuryChangeEvent)
		log.Printf("treasury change: type=%s melange=%d new_total=%d",
			ev.TransactionType, ev.MelangeAmount, ev.NewMelangeTotal)
	})
	bus.Subscribe(events.EventTypePaymentMade, func(ctx context.Context, e events.Event) {
		ev := e.(events.PaymentMadeEvent)
		log.Printf("payment made: user=%d amount=%d admin=%d", ev.UserID, ev.Amount, ev.AdminID)
	})
}

func runRetentionCleanup(ctx context.Context, admin service.AdminService) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := admin.CleanupSettledDeposits(ctx, depositRetention); err != nil {
				log.Printf("retention cleanup failed: %v", err)
			}
		}
	}
}
