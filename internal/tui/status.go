package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/tinytelemetry/homeroom/internal/cache"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// StatsSource reports per-key refresh statistics.
type StatsSource interface {
	Stats() []cache.Stats
}

// StatusScreen shows how fresh each query's data is and how its recent
// fetches went.
type StatusScreen struct {
	BaseScreen
	source StatsSource

	now   time.Time
	stats []cache.Stats
}

// NewStatusScreen creates the refresh status screen.
func NewStatusScreen(source StatsSource) *StatusScreen {
	return &StatusScreen{source: source}
}

func (st *StatusScreen) ID() string    { return "status" }
func (st *StatusScreen) Title() string { return "Status" }

func (st *StatusScreen) Update(now time.Time) tea.Cmd {
	st.now = now
	st.stats = st.source.Stats()
	return nil
}

func (st *StatusScreen) Render(s *Surface) {
	if len(st.stats) == 0 {
		s.DrawAt(0, 0, strings.Split(renderLoadingPlaceholder(st.now, s.Width, s.Height), "\n"))
		return
	}

	s.DrawAt(hudMargin, 0, []string{titleStyle.Render("Refresh status")})
	y := 2
	chartWidth := max(s.Width-2*hudMargin, 10)
	for _, ks := range st.stats {
		lines := st.describe(ks)
		s.DrawAt(hudMargin, y, lines)
		y += len(lines)
		if len(ks.Latencies) > 0 && y+latencyChartHeight < s.Height {
			chart := renderLatencyChart(ks.Latencies, chartWidth, latencyChartHeight)
			s.DrawAt(hudMargin, y, strings.Split(chart, "\n"))
			y += latencyChartHeight
		}
		y++
	}
}

func (st *StatusScreen) describe(ks cache.Stats) []string {
	health := okStyle.Render("ok")
	switch {
	case ks.Consecutive > 0 && ks.HasValue:
		health = warnStyle.Render("stale")
	case ks.Consecutive > 0:
		health = errStyle.Render("failing")
	case !ks.HasValue:
		health = labelStyle.Render("pending")
	}

	age := "never"
	if ks.HasValue {
		age = humanize.RelTime(ks.FetchedAt, st.now, "ago", "from now")
	}
	head := fmt.Sprintf("%s  %s  %s %s  %s %s  %s %s",
		titleStyle.Render(ks.Key), health,
		labelStyle.Render("updated"), age,
		labelStyle.Render("fetches"), humanize.Comma(int64(ks.Fetches)),
		labelStyle.Render("failures"), humanize.Comma(int64(ks.Failures)),
	)
	lines := []string{head}

	var detail []string
	if ks.LastLatency > 0 {
		detail = append(detail, labelStyle.Render("last ")+ks.LastLatency.Round(time.Millisecond).String())
	}
	if ks.InFlight {
		detail = append(detail, warnStyle.Render("refreshing"))
	}
	if !ks.RetryAt.IsZero() && ks.RetryAt.After(st.now) {
		detail = append(detail, labelStyle.Render("retry ")+humanize.RelTime(ks.RetryAt, st.now, "ago", "from now"))
	}
	if len(detail) > 0 {
		lines = append(lines, "  "+strings.Join(detail, "  "))
	}
	if ks.LastError != "" {
		lines = append(lines, "  "+errStyle.Render(ks.LastError))
	}
	return lines
}

const latencyChartHeight = 5

// renderLatencyChart draws one bar per recent fetch, newest on the right.
func renderLatencyChart(latencies []time.Duration, width, height int) string {
	maxBars := max(width/2, 1)
	if len(latencies) > maxBars {
		latencies = latencies[len(latencies)-maxBars:]
	}

	bc := barchart.New(width, height,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)
	barStyle := lipgloss.NewStyle().Foreground(ColorBlue).Background(ColorBlue)
	for _, d := range latencies {
		// Floor keeps every bar visible and the chart's scale non-zero.
		ms := max(float64(d)/float64(time.Millisecond), 0.01)
		bc.Push(barchart.BarData{
			Values: []barchart.BarValue{
				{Name: "latency", Value: ms, Style: barStyle},
			},
		})
	}
	bc.Draw()
	return bc.View()
}
