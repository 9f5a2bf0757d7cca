package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockRadar/internal/model"
)

// IndexRef maps a display name to the provider-specific index identifier.
type IndexRef struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
}

// Signals holds the indicator periods and thresholds.
type Signals struct {
	RSIPeriod             int     `yaml:"rsi_period"`
	RSIOversold           float64 `yaml:"rsi_oversold"`
	RSIBullishZone        float64 `yaml:"rsi_bullish_zone"`
	RSIOverbought         float64 `yaml:"rsi_overbought"`
	EMAShort              int     `yaml:"ema_short"`
	EMALong               int     `yaml:"ema_long"`
	MACDFast              int     `yaml:"macd_fast"`
	MACDSlow              int     `yaml:"macd_slow"`
	MACDSignal            int     `yaml:"macd_signal"`
	VolumeWindow          int     `yaml:"volume_window"`
	VolumeSpikeMultiplier float64 `yaml:"volume_spike_multiplier"`
	MinBars               int     `yaml:"min_bars"`
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Watchlist []string   `yaml:"watchlist"`
	Indices   []IndexRef `yaml:"indices"`
	DataSource struct {
		LookbackDays     int    `yaml:"lookback_days"`
		AttemptTimeoutMS int    `yaml:"attempt_timeout_ms"`
		MaxRetries       int    `yaml:"max_retries"`
		RetryBackoffMS   int    `yaml:"retry_backoff_ms"`
		NSEBaseURL       string `yaml:"nse_base_url"`
		YahooBaseURL     string `yaml:"yahoo_base_url"`
	} `yaml:"data_source"`
	Signals  Signals `yaml:"signals"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	News struct {
		MaxPerStock int    `yaml:"max_per_stock"`
		FeedURL     string `yaml:"feed_url"`
	} `yaml:"news"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	TradeLevels map[string]model.TradeLevels `yaml:"trade_levels"`
	LogLevel    string                       `yaml:"log_level"`
	Proxy       string                       `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then fills defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env in project root, ignored when absent

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Watchlist = splitList(v)
	}
	if v := os.Getenv("DAILY_CRON"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOOKBACK_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DataSource.LookbackDays = n
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}

func applyDefaults(cfg *Config) {
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = []string{"RELIANCE", "TCS", "HDFCBANK", "INFY", "ICICIBANK"}
	}
	if len(cfg.Indices) == 0 {
		cfg.Indices = []IndexRef{
			{Name: "NIFTY 50", ID: "^NSEI"},
			{Name: "NIFTY MIDCAP 150", ID: "NIFTY_MID_SELECT.NS"},
			{Name: "NIFTY SMALLCAP 250", ID: "^CNXSC"},
			{Name: "NIFTY BANK", ID: "^NSEBANK"},
		}
	}
	if cfg.DataSource.LookbackDays == 0 {
		cfg.DataSource.LookbackDays = 120
	}
	if cfg.DataSource.AttemptTimeoutMS == 0 {
		cfg.DataSource.AttemptTimeoutMS = 10000
	}
	if cfg.DataSource.MaxRetries == 0 {
		cfg.DataSource.MaxRetries = 2
	}
	if cfg.DataSource.RetryBackoffMS == 0 {
		cfg.DataSource.RetryBackoffMS = 2000
	}
	if cfg.DataSource.NSEBaseURL == "" {
		cfg.DataSource.NSEBaseURL = "https://www.nseindia.com"
	}
	if cfg.DataSource.YahooBaseURL == "" {
		cfg.DataSource.YahooBaseURL = "https://query1.finance.yahoo.com"
	}
	s := &cfg.Signals
	if s.RSIPeriod == 0 {
		s.RSIPeriod = 14
	}
	if s.RSIOversold == 0 {
		s.RSIOversold = 40
	}
	if s.RSIBullishZone == 0 {
		s.RSIBullishZone = 50
	}
	if s.RSIOverbought == 0 {
		s.RSIOverbought = 70
	}
	if s.EMAShort == 0 {
		s.EMAShort = 20
	}
	if s.EMALong == 0 {
		s.EMALong = 50
	}
	if s.MACDFast == 0 {
		s.MACDFast = 12
	}
	if s.MACDSlow == 0 {
		s.MACDSlow = 26
	}
	if s.MACDSignal == 0 {
		s.MACDSignal = 9
	}
	if s.VolumeWindow == 0 {
		s.VolumeWindow = 20
	}
	if s.VolumeSpikeMultiplier == 0 {
		s.VolumeSpikeMultiplier = 1.5
	}
	if s.MinBars == 0 {
		s.MinBars = 30
	}
	if cfg.Schedule.DailyCron == "" {
		// 09:00 IST on trading days, expressed in UTC
		cfg.Schedule.DailyCron = "0 30 3 * * 1-5"
	}
	if cfg.News.MaxPerStock == 0 {
		cfg.News.MaxPerStock = 2
	}
	if cfg.News.FeedURL == "" {
		cfg.News.FeedURL = "https://news.google.com/rss/search?q=%s+NSE+India+stock&hl=en-IN&gl=IN&ceid=IN:en"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stockradar.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.TradeLevels == nil {
		cfg.TradeLevels = DefaultTradeLevels()
	}
}

// DefaultTradeLevels is the analyst-maintained table shipped with the bot.
// Updated weekly; tickers outside the table render with placeholders.
func DefaultTradeLevels() map[string]model.TradeLevels {
	return map[string]model.TradeLevels{
		"NATCOPHARM": {
			Entry:      "₹845–880",
			StopLoss:   "₹720",
			STTarget:   "₹940–960",
			MTTarget:   "₹1,060–1,150",
			RiskReward: "1:2.5",
			Pattern:    "Double Bottom",
		},
		"WELSPUNLIV": {
			Entry:      "₹132–140",
			StopLoss:   "₹118",
			STTarget:   "₹155–160",
			MTTarget:   "₹175–185",
			RiskReward: "1:2.5",
			Pattern:    "Double Bottom + Gap Breakout",
		},
		"MCX": {
			Entry:      "₹8,400–8,700",
			StopLoss:   "₹7,900",
			STTarget:   "₹9,200–9,500",
			MTTarget:   "₹10,200–10,800",
			RiskReward: "1:2.5",
			Pattern:    "Double Bottom + Marubozu",
		},
		"AUBANK": {
			Entry:      "₹990–1,020",
			StopLoss:   "₹960",
			STTarget:   "₹1,060–1,090",
			MTTarget:   "₹1,180–1,250",
			RiskReward: "1:2.5",
			Pattern:    "Symmetrical Triangle Breakout",
		},
		"GRAPHITE": {
			Entry:      "₹430–480",
			StopLoss:   "₹390",
			STTarget:   "₹550–590",
			MTTarget:   "₹670–720",
			RiskReward: "1:2.8",
			Pattern:    "Rounded Bottom",
		},
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must not be empty")
	}
	if c.Signals.MACDFast >= c.Signals.MACDSlow {
		return fmt.Errorf("signals.macd_fast must be smaller than signals.macd_slow")
	}
	return nil
}
