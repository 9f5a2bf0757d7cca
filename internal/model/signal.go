package model

// OverallSignal is the discrete recommendation produced by the engine.
type OverallSignal string

const (
	SignalStrongBuy OverallSignal = "STRONG BUY"
	SignalBuy       OverallSignal = "BUY"
	SignalWatch     OverallSignal = "WATCH"
	SignalNeutral   OverallSignal = "NEUTRAL"
	SignalCaution   OverallSignal = "CAUTION"
	SignalNoData    OverallSignal = "NO DATA"
)

// Emoji returns the visual tag for a signal. It is display-only and
// never feeds back into any decision.
func (s OverallSignal) Emoji() string {
	switch s {
	case SignalStrongBuy, SignalBuy:
		return "🟢"
	case SignalWatch:
		return "🟡"
	case SignalCaution:
		return "🔴"
	case SignalNoData:
		return "❓"
	default:
		return "⚪"
	}
}

// Placeholder is the sentinel shown when a trade-level field is not maintained.
const Placeholder = "—"

// TradeLevels is analyst-maintained reference data keyed by ticker.
// All fields are opaque display strings, never derived from price data.
type TradeLevels struct {
	Entry      string `yaml:"entry"`
	StopLoss   string `yaml:"stop_loss"`
	STTarget   string `yaml:"st_target"`
	MTTarget   string `yaml:"mt_target"`
	RiskReward string `yaml:"risk_reward"`
	Pattern    string `yaml:"pattern"`
}

// PlaceholderLevels returns an all-sentinel record for tickers without
// maintained levels. Absence of levels is never an error.
func PlaceholderLevels() TradeLevels {
	return TradeLevels{
		Entry:      Placeholder,
		StopLoss:   Placeholder,
		STTarget:   Placeholder,
		MTTarget:   Placeholder,
		RiskReward: Placeholder,
		Pattern:    Placeholder,
	}
}

// StockSignal is the engine's output for one ticker. It is fully populated
// before being returned and never mutated afterwards.
type StockSignal struct {
	Ticker        string
	CurrentPrice  *float64
	ChangePct     *float64
	RSI           *float64
	MACDBullish   bool
	AboveEMAShort bool
	AboveEMALong  bool
	VolumeSpike   bool
	VolumeRatio   *float64
	Pattern       string
	Overall       OverallSignal
	Levels        TradeLevels
	Notes         []string
	Error         string
}
