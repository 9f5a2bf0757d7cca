package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"StockRadar/internal/collector"
	"StockRadar/internal/config"
	"StockRadar/internal/health"
	"StockRadar/internal/metrics"
	"StockRadar/internal/news"
	"StockRadar/internal/notifier"
	"StockRadar/internal/scheduler"
	"StockRadar/internal/strategy"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	log.Info().Msg("StockRadar starting")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	// Data providers in fallback order: NSE history, Yahoo chart, NSE quote.
	providers := []collector.Provider{
		collector.NewNSEHistoricalProvider(cfg.DataSource.NSEBaseURL, cfg.Proxy),
		collector.NewYahooProvider(cfg.DataSource.YahooBaseURL, cfg.Proxy),
		collector.NewNSEQuoteProvider(cfg.DataSource.NSEBaseURL, cfg.Proxy),
	}
	data := collector.NewDataSource(providers, collector.Options{
		LookbackDays:   cfg.DataSource.LookbackDays,
		AttemptTimeout: time.Duration(cfg.DataSource.AttemptTimeoutMS) * time.Millisecond,
		MaxRetries:     cfg.DataSource.MaxRetries,
		RetryBackoff:   time.Duration(cfg.DataSource.RetryBackoffMS) * time.Millisecond,
	}, log)

	engine := strategy.NewEngine(cfg.TradeLevels, cfg.Signals, log)
	nf := news.NewFetcher(cfg.News.FeedURL, cfg.News.MaxPerStock, log)
	tg := notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)

	// Run-health recorder
	var rec health.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := health.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = health.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = health.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.Addr != "" {
		srv := metrics.Serve(cfg.Metrics.Addr)
		defer srv.Shutdown(context.Background())
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics endpoint up")
	}

	sched := scheduler.NewScheduler(ctx, cfg, data, engine, nf, tg, rec, log)
	if err := sched.RegisterAll(); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Telegram command polling
	go tg.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, building report now")
		go sched.RunReportNow()
	}

	log.Info().Msg("StockRadar is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("StockRadar stopped")
}
