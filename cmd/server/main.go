package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"feefocus/internal/config"
	httpGateway "feefocus/internal/gateways/http"
	"feefocus/internal/gateways/nbp"
	"feefocus/internal/repository/store/postgres"
	usecaseInternal "feefocus/internal/usecase"
)

const (
	envLocal = "local"
	envDev   = "dev"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.LoadConfig()
	pgCfg := cfg.Pg
	log := setupLogger(cfg.Env)

	log.Info("starting feefocus", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	databaseUrl := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		pgCfg.User,
		pgCfg.Password,
		pgCfg.Host,
		pgCfg.Port,
		pgCfg.Db)

	pool, err := pgxpool.New(ctx, databaseUrl)
	if err != nil {
		log.Error("failed to init storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	log.Debug("init database")

	store := postgres.NewStore(pool)
	source := nbp.NewClient(cfg.Rates.BaseURL, cfg.Rates.Timeout)

	ledger := usecaseInternal.NewLedger(store)
	rates := usecaseInternal.NewRates(store, source, log)

	// a failed restore is not fatal: the ledger starts empty and the rate
	// table stays at the built-in defaults
	if err := ledger.Restore(ctx); err != nil {
		log.Warn("restore subscriptions failed", slog.String("error", err.Error()))
	}
	if err := rates.Restore(ctx); err != nil {
		log.Warn("restore settings failed", slog.String("error", err.Error()))
	}
	if cur := strings.ToUpper(cfg.Defaults.Currency); cur != "" {
		if err := rates.SetDefaultCurrency(ctx, cur); err != nil {
			log.Warn("configured default currency rejected", slog.String("currency", cur))
		}
	}

	startupMaintenance(ctx, log, ledger, rates)

	useCases := httpGateway.UseCases{
		Ledger: ledger,
		Rates:  rates,
	}

	server := httpGateway.New(useCases,
		*cfg,
		log,
		httpGateway.WithHost(cfg.Server.Host),
		httpGateway.WithPort(uint16(cfg.Server.Port)),
		httpGateway.WithLogger(log),
		httpGateway.WithTimeout(cfg.Server.Timeout),
	)

	log.Info("starting server", slog.String("address", cfg.Server.Host+":"+strconv.Itoa(cfg.Server.Port)))
	if err := server.Run(ctx); err != nil {
		log.Error(err.Error())
		return
	}
}

// startupMaintenance refreshes the rate table and rolls lapsed payment dates
// forward, the same housekeeping a client triggers on launch.
func startupMaintenance(ctx context.Context, log *slog.Logger, ledger *usecaseInternal.Ledger, rates *usecaseInternal.Rates) {
	now := time.Now().UTC()
	today := now.Format(time.DateOnly)

	if rates.NeedsRefresh(today) {
		if table, err := rates.Refresh(ctx, today); err != nil {
			log.Warn("exchange rates may be stale",
				slog.String("last_updated", table.LastUpdated),
				slog.String("error", err.Error()))
		} else {
			log.Info("exchange rates refreshed", slog.String("last_updated", table.LastUpdated))
		}
	}

	rolled, err := ledger.RollForwardExpired(ctx, now)
	if err != nil {
		log.Warn("roll forward failed", slog.String("error", err.Error()))
		return
	}
	if rolled > 0 {
		log.Info("rolled lapsed payment dates forward", slog.Int("count", rolled))
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch strings.ToLower(env) {
	case envLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}
	return log
}
