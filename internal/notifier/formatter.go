package notifier

import (
	"fmt"
	"strings"
	"time"

	"StockRadar/internal/health"
	"StockRadar/internal/model"
)

// maxMessageLen keeps each part safely under Telegram's 4096-char limit.
const maxMessageLen = 4000

var istZone = time.FixedZone("IST", 5*3600+30*60)

// IndexEntry pairs a display name with its fetched snapshot, preserving the
// configured ordering (maps would scramble it).
type IndexEntry struct {
	Name string
	Snap model.IndexSnapshot
}

// BuildReport renders the full daily report as Telegram-ready message parts.
func BuildReport(indices []IndexEntry, signals []*model.StockSignal, headlines map[string][]model.Headline) []string {
	parts := []string{header(), indexBlock(indices)}
	for _, sig := range signals {
		parts = append(parts, FormatSignal(sig))
		parts = append(parts, newsBlock(sig.Ticker, headlines[sig.Ticker]))
	}
	parts = append(parts, footer())
	return chunk(parts)
}

func header() string {
	now := time.Now().In(istZone).Format("02 Jan 2006 • 03:04 PM IST")
	return "━━━━━━━━━━━━━━━━━━━━━━━━━━\n" +
		"📊 *DAILY STOCK ALERT REPORT*\n" +
		fmt.Sprintf("🗓 _%s_\n", now) +
		"━━━━━━━━━━━━━━━━━━━━━━━━━━"
}

func indexBlock(indices []IndexEntry) string {
	lines := []string{"", "📈 *INDEX SUMMARY*", ""}
	for _, e := range indices {
		if e.Snap.Price == nil {
			lines = append(lines, fmt.Sprintf("• %s: _data unavailable_", e.Name))
			continue
		}
		emoji := "🟢"
		if e.Snap.ChangePct != nil && *e.Snap.ChangePct < 0 {
			emoji = "🔴"
		}
		lines = append(lines, fmt.Sprintf("%s *%s*: `%.2f` %s `%+.2f%%`",
			emoji, e.Name, *e.Snap.Price, e.Snap.Trend, deref(e.Snap.ChangePct)))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// FormatSignal renders one ticker's block, also used standalone by /signal.
func FormatSignal(sig *model.StockSignal) string {
	if sig.Error != "" {
		return fmt.Sprintf("\n⚠️ *%s* — data error\n`%s`\n", sig.Ticker, sig.Error)
	}

	chgStr := model.Placeholder
	if sig.ChangePct != nil {
		chgStr = fmt.Sprintf("%+.2f%%", *sig.ChangePct)
	}
	rsiStr := model.Placeholder
	if sig.RSI != nil {
		rsiStr = fmt.Sprintf("%.1f", *sig.RSI)
	}
	volStr := model.Placeholder
	if sig.VolumeRatio != nil {
		volStr = fmt.Sprintf("%.2f×", *sig.VolumeRatio)
	}
	cmpStr := model.Placeholder
	if sig.CurrentPrice != nil {
		cmpStr = fmt.Sprintf("₹%.2f", *sig.CurrentPrice)
	}

	pill := func(flag bool, label string) string {
		if flag {
			return "✅ " + label
		}
		return "❌ " + label
	}
	indicators := strings.Join([]string{
		pill(sig.MACDBullish, "MACD"),
		pill(sig.AboveEMAShort, "EMA20"),
		pill(sig.AboveEMALong, "EMA50"),
		pill(sig.VolumeSpike, "Vol↑"),
	}, "  ")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n%s\n", strings.Repeat("─", 26)))
	b.WriteString(fmt.Sprintf("%s *%s* — %s\n", sig.Overall.Emoji(), sig.Ticker, sig.Overall))
	b.WriteString(fmt.Sprintf("💰 CMP: `%s` (%s)\n", cmpStr, chgStr))
	b.WriteString(fmt.Sprintf("📐 Pattern: _%s_\n\n", sig.Pattern))
	b.WriteString("*Indicators*\n")
	b.WriteString(indicators + "\n")
	b.WriteString(fmt.Sprintf("📉 RSI: `%s` | 📦 Volume: `%s`\n\n", rsiStr, volStr))
	b.WriteString("*Trade Levels*\n")
	b.WriteString(fmt.Sprintf("🎯 Entry:    `%s`\n", sig.Levels.Entry))
	b.WriteString(fmt.Sprintf("🛑 Stop Loss: `%s`\n", sig.Levels.StopLoss))
	b.WriteString(fmt.Sprintf("📌 ST Target: `%s`\n", sig.Levels.STTarget))
	b.WriteString(fmt.Sprintf("🏁 MT Target: `%s`\n", sig.Levels.MTTarget))
	b.WriteString(fmt.Sprintf("⚖️ R:R Ratio: `%s`", sig.Levels.RiskReward))

	for _, note := range sig.Notes {
		b.WriteString("\n💬 " + note)
	}
	return b.String()
}

func newsBlock(ticker string, items []model.Headline) string {
	if len(items) == 0 {
		return fmt.Sprintf("\n📰 *%s News*: _No recent headlines_\n", ticker)
	}
	lines := []string{fmt.Sprintf("\n📰 *%s News*", ticker)}
	for _, item := range items {
		title := item.Title
		if len(title) > 80 {
			title = title[:80] + "…"
		}
		lines = append(lines, fmt.Sprintf("• [%s](%s)", title, item.URL))
	}
	return strings.Join(lines, "\n") + "\n"
}

func footer() string {
	return "\n━━━━━━━━━━━━━━━━━━━━━━━━━━\n" +
		"⚠️ _For educational purposes only._\n" +
		"_Not SEBI-registered advice._\n" +
		"━━━━━━━━━━━━━━━━━━━━━━━━━━"
}

// FormatStatus renders the health monitor state for /status.
func FormatStatus(st *health.Status) string {
	lastRun := "Never"
	if !st.LastRun.IsZero() {
		lastRun = st.LastRun.Format("2006-01-02 15:04:05 UTC")
	}
	var b strings.Builder
	b.WriteString("🤖 *StockRadar Health Status*\n\n")
	b.WriteString(fmt.Sprintf("🟢 Last Status:  `%s`\n", st.LastStatus))
	b.WriteString(fmt.Sprintf("📅 Last Run:     `%s`\n", lastRun))
	b.WriteString(fmt.Sprintf("✅ Successes:    `%d`\n", st.Successes))
	b.WriteString(fmt.Sprintf("❌ Failures:     `%d`\n", st.Failures))
	b.WriteString(fmt.Sprintf("🔄 Total Runs:   `%d`\n", st.TotalRuns))
	b.WriteString(fmt.Sprintf("⏱ Running Since: `%s`\n", st.StartedAt.Format("2006-01-02 15:04:05 UTC")))
	if st.LastError != "" {
		b.WriteString(fmt.Sprintf("⚠️ Last Error:   `%s`", st.LastError))
	}
	return b.String()
}

// FormatWatchlist renders the tracked tickers for /watchlist.
func FormatWatchlist(tickers []string) string {
	var b strings.Builder
	b.WriteString("📋 *Tracked Stocks*\n\n")
	for _, s := range tickers {
		b.WriteString(fmt.Sprintf("• `%s`\n", s))
	}
	return b.String()
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// chunk combines parts into messages of at most maxMessageLen characters,
// never splitting inside a part.
func chunk(parts []string) []string {
	var messages []string
	current := ""
	for _, part := range parts {
		if len(current)+len(part)+1 > maxMessageLen {
			if strings.TrimSpace(current) != "" {
				messages = append(messages, strings.TrimSpace(current))
			}
			current = part
			continue
		}
		if current == "" {
			current = part
		} else {
			current += "\n" + part
		}
	}
	if strings.TrimSpace(current) != "" {
		messages = append(messages, strings.TrimSpace(current))
	}
	if len(messages) == 0 {
		return []string{"No data to display."}
	}
	return messages
}
