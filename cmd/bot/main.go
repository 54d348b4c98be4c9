package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/tutor_reservations/internal/app"
	"github.com/Freeeeeet/tutor_reservations/internal/cache"
	"github.com/Freeeeeet/tutor_reservations/internal/config"
	"github.com/Freeeeeet/tutor_reservations/internal/controller"
	"github.com/Freeeeeet/tutor_reservations/internal/events"
	"github.com/Freeeeeet/tutor_reservations/internal/httpapi"
	"github.com/Freeeeeet/tutor_reservations/internal/repository"
	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName     = "tutor-reservations"
	shutdownTimeout = 10 * time.Second
	dialogSweep     = 5 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogFile)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Service stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Service stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting tutor reservations",
		zap.String("environment", cfg.Environment),
		zap.Bool("bot", cfg.TelegramToken != ""),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Bool("cache", cfg.CacheEnabled()),
		zap.Bool("events", cfg.EventsEnabled()))

	var closer app.Closer
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := closer.Close(closeCtx); err != nil {
			logger.Error("Failed to release resources", zap.Error(err))
		}
	}()

	if cfg.TracingEnabled() {
		shutdown, err := app.InitTracer(ctx, serviceName, cfg.OTLPEndpoint, cfg.Environment)
		if err != nil {
			return err
		}
		closer.Add("tracer", shutdown)
	}

	// ===== Storage =====
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	closer.AddFunc("postgres", func() error { pool.Close(); return nil })

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		return err
	}
	err = migrator.Run(ctx)
	if cerr := migrator.Close(); cerr != nil {
		logger.Warn("Failed to close migrator", zap.Error(cerr))
	}
	if err != nil {
		return err
	}

	users := repository.NewUserRepository(pool)
	catalog := repository.NewCatalogRepository(pool, logger)
	reservations := repository.NewReservationRepository(pool)
	reviews := repository.NewReviewRepository(pool)

	// Кеш и брокер необязательны: без них сервис работает напрямую с БД
	var views service.ViewCache
	if cfg.CacheEnabled() {
		client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Warn("Redis unavailable, reservation cache disabled", zap.Error(err))
		} else {
			closer.AddFunc("redis", client.Close)
			views = cache.NewReservationViews(client, cfg.CachePrefix, cfg.CacheTTL, logger)
		}
	}

	profiles := service.NewProfileService(users, catalog, reservations, views, logger)
	reviewService := service.NewReviewService(reviews, reservations, catalog, logger)

	// ===== Telegram =====
	var (
		tg       *bot.Bot
		notifier *controller.Notifier
	)
	if cfg.TelegramToken != "" {
		tg, err = bot.New(cfg.TelegramToken)
		if err != nil {
			return err
		}
		notifier = controller.NewNotifier(tg, profiles, logger)
	}

	// ===== Events =====
	var (
		publisher service.EventPublisher
		queue     *events.Queue
	)
	switch {
	case cfg.EventsEnabled():
		pub, err := events.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, logger)
		if err != nil {
			return err
		}
		closer.AddFunc("rabbitmq publisher", pub.Close)
		publisher = pub
	case notifier != nil:
		// Без брокера уведомления разбираются фоновой задачей этого же процесса
		queue = events.NewQueue(events.DefaultQueueSize, logger)
		publisher = queue
	}

	engine := service.NewReservationService(users, catalog, reservations, views, publisher, logger)

	scheduler := app.NewScheduler(logger)
	defer scheduler.Stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.HTTPAddr != "" {
		handler := httpapi.NewHandler(engine, profiles, reviewService, cfg.QuickLimit, logger)
		server := httpapi.NewServer(handler, cfg.JWTSecret, logger)

		g.Go(func() error {
			logger.Info("HTTP API listening", zap.String("addr", cfg.HTTPAddr))
			if err := server.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if tg != nil {
		botController := controller.NewBotController(tg, engine, profiles, reviewService, cfg.QuickLimit, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			return err
		}

		scheduler.Every(ctx, "expire bot dialogs", dialogSweep, botController.ExpireDialogs)

		switch {
		case cfg.EventsEnabled():
			consumer := events.NewConsumer(events.ConsumerConfig{
				URL:      cfg.RabbitMQURL,
				Exchange: cfg.RabbitMQExchange,
				Queue:    cfg.NotifyQueue,
			}, logger)
			scheduler.Go(ctx, "telegram notifications", func(ctx context.Context) error {
				return consumer.Run(ctx, notifier.Handle)
			})
		case queue != nil:
			scheduler.Go(ctx, "telegram notifications", func(ctx context.Context) error {
				return queue.Run(ctx, notifier.Handle)
			})
		}

		g.Go(func() error {
			return botController.Start(ctx)
		})
	}

	return g.Wait()
}
