package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/tripmind/quota-service/internal/config"
	"github.com/tripmind/quota-service/internal/domain/boosts"
	"github.com/tripmind/quota-service/internal/domain/stats"
	"github.com/tripmind/quota-service/internal/domain/users"
	"github.com/tripmind/quota-service/internal/infra/db"
	httpx "github.com/tripmind/quota-service/internal/infra/http"
	"github.com/tripmind/quota-service/internal/infra/logger"
	"github.com/tripmind/quota-service/internal/limits"
	"github.com/tripmind/quota-service/internal/metrics"
	"github.com/tripmind/quota-service/internal/notify"
	"github.com/tripmind/quota-service/internal/reconcile"
	"github.com/tripmind/quota-service/internal/report"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Error("bad timezone, falling back to UTC", "tz", cfg.App.Timezone, "err", err)
		loc = time.UTC
	}

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	usersRepo := users.NewRepo(pool)
	boostsRepo := boosts.NewRepo(pool)
	statsRepo := stats.NewRepo(pool)

	limitsSvc := limits.NewService(usersRepo, boostsRepo)
	reporter := report.NewGenerator(limitsSvc, statsRepo)
	engine := reconcile.NewEngine(log, usersRepo, boostsRepo)

	var email reconcile.ReportSender
	if cfg.SMTP.Enabled {
		email = notify.NewEmailSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			To:       cfg.SMTP.To,
		})
	}

	var telegram reconcile.SummaryNotifier
	if cfg.Telegram.Enabled {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			log.Error("telegram init failed", "err", err)
			return
		}
		telegram = notify.NewTelegramNotifier(api, cfg.Telegram.AdminChatID)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	job := reconcile.NewJob(log, reporter, engine, boostsRepo, email, telegram, m,
		time.Duration(cfg.Cron.TimeoutSec)*time.Second, loc)

	cron := httpx.NewCronHandler(log, cfg.Cron.Secret, job)
	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, cron)
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
