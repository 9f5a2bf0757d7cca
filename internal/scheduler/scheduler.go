package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"StockRadar/internal/collector"
	"StockRadar/internal/config"
	"StockRadar/internal/health"
	"StockRadar/internal/metrics"
	"StockRadar/internal/model"
	"StockRadar/internal/news"
	"StockRadar/internal/notifier"
	"StockRadar/internal/strategy"
)

// maxConcurrentFetches bounds parallel per-ticker pipelines so the
// providers' rate limits are not overwhelmed on large watchlists.
const maxConcurrentFetches = 4

// Scheduler owns the cron tasks and the report pipeline.
type Scheduler struct {
	Cron     *cron.Cron
	Data     *collector.DataSource
	Engine   *strategy.Engine
	News     *news.Fetcher
	Notifier *notifier.Telegram
	Health   health.Recorder
	Cfg      *config.Config
	Ctx      context.Context
	log      zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, cfg *config.Config, data *collector.DataSource,
	engine *strategy.Engine, nf *news.Fetcher, tg *notifier.Telegram,
	rec health.Recorder, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Data:     data,
		Engine:   engine,
		News:     nf,
		Notifier: tg,
		Health:   rec,
		Cfg:      cfg,
		Ctx:      ctx,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the daily report task.
func (s *Scheduler) RegisterAll() error {
	if _, err := s.Cron.AddFunc(s.Cfg.Schedule.DailyCron, s.dailyReport); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Str("daily_cron", s.Cfg.Schedule.DailyCron).Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// RunReportNow executes the daily report immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunReportNow() {
	s.dailyReport()
}

func (s *Scheduler) dailyReport() {
	s.log.Info().Int("watchlist", len(s.Cfg.Watchlist)).Msg("building daily report")

	messages := s.buildReport(s.Ctx)
	if err := s.Notifier.SendReport(s.Ctx, messages); err != nil {
		s.log.Error().Err(err).Msg("deliver daily report")
		metrics.ReportRuns.WithLabelValues("failure").Inc()
		if rerr := s.Health.RecordFailure(err.Error()); rerr != nil {
			s.log.Error().Err(rerr).Msg("record run failure")
		}
		return
	}

	metrics.ReportRuns.WithLabelValues("success").Inc()
	if err := s.Health.RecordSuccess(); err != nil {
		s.log.Error().Err(err).Msg("record run success")
	}
	s.log.Info().Int("parts", len(messages)).Msg("daily report delivered")
}

// buildReport assembles the full report: index snapshots, one signal per
// watchlist ticker, and recent headlines. Fetch failures degrade to
// NO DATA entries rather than aborting the report.
func (s *Scheduler) buildReport(ctx context.Context) []string {
	indices := make([]notifier.IndexEntry, 0, len(s.Cfg.Indices))
	for _, idx := range s.Cfg.Indices {
		indices = append(indices, notifier.IndexEntry{
			Name: idx.Name,
			Snap: s.Data.FetchIndexSnapshot(ctx, idx.ID),
		})
	}

	signals := s.collectSignals(ctx, s.Cfg.Watchlist)
	headlines := s.News.Headlines(ctx, s.Cfg.Watchlist)

	return notifier.BuildReport(indices, signals, headlines)
}

// collectSignals fetches and analyses every ticker with bounded
// parallelism, preserving watchlist order in the result.
func (s *Scheduler) collectSignals(ctx context.Context, tickers []string) []*model.StockSignal {
	signals := make([]*model.StockSignal, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			bars := s.Data.FetchSeries(gctx, ticker)
			signals[i] = s.Engine.Analyse(ticker, bars)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors, failures become NO DATA signals

	return signals
}

// HandleCommand processes a user command and returns the reply text.
// An empty reply means the command produced its own messages.
func (s *Scheduler) HandleCommand(ctx context.Context, command string, args []string) string {
	switch command {
	case "/start":
		return "👋 *StockRadar* is online.\n\nDaily market reports arrive on schedule. Send /help for commands."
	case "/help":
		return strings.Join([]string{
			"*Commands*",
			"/report — build and send today's report now",
			"/signal TICKER — analyse a single NSE ticker",
			"/watchlist — show tracked tickers",
			"/status — last run health",
		}, "\n")
	case "/report":
		go s.dailyReport()
		return "⏳ Building today's report…"
	case "/signal":
		if len(args) == 0 {
			return "Usage: /signal TICKER (e.g. /signal RELIANCE)"
		}
		ticker := strings.ToUpper(args[0])
		bars := s.Data.FetchSeries(ctx, ticker)
		return notifier.FormatSignal(s.Engine.Analyse(ticker, bars))
	case "/watchlist":
		return notifier.FormatWatchlist(s.Cfg.Watchlist)
	case "/status":
		st, err := s.Health.Status()
		if err != nil {
			return fmt.Sprintf("⚠️ Status unavailable: %v", err)
		}
		return notifier.FormatStatus(st)
	default:
		return "Unknown command. Send /help for the command list."
	}
}
