package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/nyinsen/internal/api"
	"github.com/terraincognita07/nyinsen/internal/config"
	"github.com/terraincognita07/nyinsen/internal/content"
	"github.com/terraincognita07/nyinsen/internal/db"
	"github.com/terraincognita07/nyinsen/internal/llm"
	"github.com/terraincognita07/nyinsen/internal/notify"
	"github.com/terraincognita07/nyinsen/internal/ratelimit"
	"github.com/terraincognita07/nyinsen/internal/scheduler"
	"github.com/terraincognita07/nyinsen/internal/services"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout    = 10 * time.Second
	reminderJobTimeout = 5 * time.Minute
	csrfCookieName     = "nyinsen_csrf"
	csrfHeaderName     = "X-CSRF-Token"
)

func newServeCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rt.cfg, rt.log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	time.Local = cfg.Location()

	database, err := db.OpenSQLite(cfg.DBPath, log)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	catalog, err := content.Load()
	if err != nil {
		return fmt.Errorf("content init failed: %w", err)
	}

	clock := clockwork.NewRealClock()
	repositories := db.NewRepositories(database)
	notifier, err := buildNotifier(cfg, log)
	if err != nil {
		return err
	}

	chatStore, closeChatStore, err := buildChatStore(ctx, cfg, clock, log)
	if err != nil {
		return err
	}
	defer closeChatStore()

	completer, err := buildCompleter(ctx, cfg, log)
	if err != nil {
		return err
	}

	handler, err := api.NewHandler(api.Dependencies{
		Database: database,
		Catalog:  catalog,
		Chat: services.NewChatService(
			ratelimit.NewFixedWindow(chatStore, clock, cfg.ChatRateLimit, cfg.ChatRateWindow),
			completer,
			repositories.ChatMessages,
			log,
		),
		Alerts: services.NewRiskAlertService(
			repositories.RiskAlerts,
			repositories.NotificationLogs,
			repositories.EmergencyContacts,
			repositories.HealthcareProfessionals,
			repositories.Profiles,
			notifier,
			catalog.EmergencyNumber,
		),
		APILimiter:   ratelimit.NewTokenBucket(cfg.APIRatePerSecond, cfg.APIRateBurst, clock),
		SecretKey:    []byte(cfg.SecretKey),
		Location:     cfg.Location(),
		CookieSecure: cfg.CookieSecure,
		SessionTTL:   cfg.SessionTTL,
		Log:          log,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := newHTTPApp(handler, cfg, log)

	reminders := services.NewReminderService(repositories.Users, buildReminderNotifier(cfg, notifier, log), clock, services.ReminderSettings{
		PeriodReminderDays: cfg.PeriodReminderDays,
		NotifyFertility:    cfg.NotifyFertility,
		Location:           cfg.Location(),
	}, log)
	jobs := scheduler.New(cfg.Location(), log)
	if err := jobs.Add(scheduler.Job{
		Name:    "cycle_reminders",
		Spec:    cfg.ReminderCron,
		Timeout: reminderJobTimeout,
		Run: func(ctx context.Context) error {
			_, err := reminders.Run(ctx)
			return err
		},
	}); err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":     cfg.Addr(),
			"db":       cfg.DBPath,
			"tz":       cfg.Location().String(),
			"chat":     completer.Provider(),
			"notifier": notifier.Method(),
		}).Info("nyinsen listening")
		if err := app.Listen(cfg.Addr()); err != nil {
			return fmt.Errorf("server exited: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		schedulerErr := jobs.Stop(shutdownCtx)
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return errors.Join(schedulerErr, fmt.Errorf("server shutdown failed: %w", err))
		}
		log.Info("server stopped")
		return schedulerErr
	})
	jobs.Start()

	return group.Wait()
}

func newHTTPApp(handler *api.Handler, cfg *config.Config, log logrus.FieldLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "nyinsen",
		DisableStartupMessage: true,
		ErrorHandler:          api.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(api.AccessLog(log))
	app.Use(compress.New())
	app.Use(csrf.New(csrfMiddlewareConfig(cfg.CookieSecure)))

	api.RegisterRoutes(app, handler)
	return app
}

// csrfMiddlewareConfig protects cookie sessions with a double-submit token.
// Requests that carry a bearer token or no session cookie are not checked.
func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		Next: func(c *fiber.Ctx) bool {
			return api.HasBearerToken(c) || c.Cookies(api.AuthCookieName) == ""
		},
		KeyLookup:      "header:" + csrfHeaderName,
		CookieName:     csrfCookieName,
		CookieSameSite: "Lax",
		CookieHTTPOnly: false,
		CookieSecure:   cookieSecure,
		Expiration:     time.Hour,
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "invalid csrf token"})
		},
	}
}

func buildNotifier(cfg *config.Config, log logrus.FieldLogger) (notify.Notifier, error) {
	if !cfg.TelegramEnabled() {
		return notify.NewInstrumented(notify.NewLogNotifier(log)), nil
	}
	bot, err := notify.NewTelegramBot(cfg.TelegramBotToken)
	if err != nil {
		return nil, err
	}
	return notify.NewInstrumented(notify.NewTelegramNotifier(bot, cfg.TelegramChatID)), nil
}

// buildReminderNotifier keeps per-user reminders out of the shared care-team
// chat unless TELEGRAM_REMINDERS opts in.
func buildReminderNotifier(cfg *config.Config, shared notify.Notifier, log logrus.FieldLogger) notify.Notifier {
	if cfg.RemindersToTelegram() {
		return shared
	}
	if cfg.TelegramEnabled() {
		log.Info("cycle reminders are logged only, set TELEGRAM_REMINDERS to send them to the care team chat")
	}
	return notify.NewInstrumented(notify.NewLogNotifier(log))
}

// buildChatStore shares chat rate-limit counters through Redis when
// REDIS_URL is set and keeps them in process otherwise.
func buildChatStore(ctx context.Context, cfg *config.Config, clock clockwork.Clock, log logrus.FieldLogger) (ratelimit.Store, func(), error) {
	if cfg.RedisURL == "" {
		store := ratelimit.NewMemoryStore(clock, cfg.ChatRateWindow)
		return store, store.Close, nil
	}

	rdb, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis init failed: %w", err)
	}
	closeRedis := func() {
		if err := rdb.Close(); err != nil {
			log.WithError(err).Warn("close redis client")
		}
	}
	return ratelimit.NewRedisStore(rdb), closeRedis, nil
}

func buildCompleter(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (llm.Completer, error) {
	completer, err := llm.New(ctx, cfg.LLM())
	if err != nil {
		return nil, fmt.Errorf("chat provider init failed: %w", err)
	}
	if completer.Provider() == llm.ProviderDisabled {
		log.Warn("chat provider has no credentials, chat answers are disabled")
		return completer, nil
	}
	return llm.NewBreaker(completer, llm.DefaultBreakerConfig(), log), nil
}
