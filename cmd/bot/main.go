package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/BadSnail11/Bookingbot/internal/app"
	"github.com/BadSnail11/Bookingbot/internal/config"
	"github.com/BadSnail11/Bookingbot/internal/controller"
	"github.com/BadSnail11/Bookingbot/internal/controller/state"
	"github.com/BadSnail11/Bookingbot/internal/notify"
	"github.com/BadSnail11/Bookingbot/internal/reminder"
	"github.com/BadSnail11/Bookingbot/internal/repository"
	"github.com/BadSnail11/Bookingbot/internal/service"
	"github.com/BadSnail11/Bookingbot/internal/timetable"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)

	defer logger.Sync()

	logger.Sugar().Infow("Starting reservation bot",
		"environment", cfg.Environment,
		"venue", cfg.Venue.Name)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// База данных
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info("✅ Connected to database")

	// Миграции
	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return err
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	// Расписание работы заведения
	rules := timetable.DefaultWeeklyRules()
	if cfg.WeeklyRules != "" {
		rules, err = timetable.ParseWeeklyRules(cfg.WeeklyRules)
		if err != nil {
			return err
		}
	}
	tt := timetable.New(rules, cfg.Location, timetable.Settings{
		SlotStep:       cfg.TimeSlotStep,
		Duration:       cfg.ReservationDuration,
		MinAdvanceDays: cfg.MinAdvanceDays,
		OnlyTomorrow:   cfg.OnlyTomorrow,
		BlockedDates:   cfg.BlockedDates,
	})

	// Репозитории
	guestRepo := repository.NewGuestRepository(pool)
	tableRepo := repository.NewTableRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)

	// Основной бот
	b, err := bot.New(cfg.TelegramToken, bot.WithMiddlewares(controller.RequestTimeout))
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}

	// Алерты администраторам уходят через отдельного бота, если задан
	// его токен, иначе через основного
	alertBot := b
	if cfg.AdminAlertBotToken != "" {
		alertBot, err = bot.New(cfg.AdminAlertBotToken)
		if err != nil {
			return fmt.Errorf("create alert bot: %w", err)
		}
	}

	notifier := notify.NewTelegramNotifier(b, logger)
	alerter := notify.NewAdminAlerter(alertBot, cfg.AlertRecipients(), logger)

	reminders := reminder.New(reservationRepo, guestRepo, notifier, cfg.ReminderLead, cfg.Venue.Name, logger)
	defer reminders.Stop()

	// Сервисы
	guestService := service.NewGuestService(guestRepo, logger)
	availability := service.NewAvailabilityService(reservationRepo, tableRepo, logger)
	bookingService := service.NewBookingService(
		reservationRepo,
		tableRepo,
		guestRepo,
		availability,
		tt,
		service.BookingPolicy{
			DailyLimit:          cfg.DailyReservationLimit,
			LimitScope:          cfg.LimitScope,
			AutoConfirmMaxParty: cfg.AutoConfirmMaxParty,
		},
		cfg.Venue,
		notifier,
		alerter,
		reminders,
		logger,
	)

	// Взводим напоминания по уже подтверждённым броням
	if _, err := reminders.Recover(ctx); err != nil {
		logger.Error("Failed to recover reminders", zap.Error(err))
	}

	// Состояние диалогов и фоновая чистка брошенных анкет
	stateManager := state.NewManager()
	scheduler := app.NewScheduler(stateManager, logger)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	ctrl := controller.NewBotController(b, cfg, tt, guestService, bookingService, availability, stateManager, logger)
	if err := ctrl.RegisterHandlers(ctx); err != nil {
		return err
	}

	logger.Info("🚀 Bot is up",
		zap.String("venue", cfg.Venue.Name),
		zap.Int("admins", len(cfg.AdminIDs)),
	)

	return ctrl.Start(ctx)
}
