package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	sessiondto "bactrack/internal/modules/session/dto"
	"bactrack/internal/ui/components"
	"bactrack/internal/ui/theme"
)

// Thresholds colour the gauge and the chart.
type Thresholds struct {
	Caution float64
	Danger  float64
	Legal   float64
}

// Model renders the active session. It holds no ports; the app model
// pushes fresh snapshots in with SetSession.
type Model struct {
	thresholds Thresholds
	session    sessiondto.SessionOutput
	has        bool
	width      int
	height     int
}

func New(thresholds Thresholds) Model {
	return Model{thresholds: thresholds}
}

func (m *Model) SetSession(out sessiondto.SessionOutput) {
	m.session = out
	m.has = true
}

func (m *Model) Clear() {
	m.session = sessiondto.SessionOutput{}
	m.has = false
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Session returns the snapshot on screen, if any.
func (m Model) Session() (sessiondto.SessionOutput, bool) {
	return m.session, m.has
}

// ResolveEvent expands an id prefix against the events on screen.
func (m Model) ResolveEvent(prefix string) (string, error) {
	var match string
	for _, ev := range m.session.Events {
		if ev.ID == prefix {
			return ev.ID, nil
		}
		if strings.HasPrefix(ev.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("event id %q is ambiguous", prefix)
			}
			match = ev.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no event matches %q", prefix)
	}
	return match, nil
}

func (m Model) View() string {
	if !m.has {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("No active session. Press s to start drinking, : for commands."))
	}

	summaryW := 34
	if m.width < 80 {
		summaryW = m.width / 2
	}
	chartW := m.width - summaryW - 4
	if chartW < 8 {
		chartW = 8
	}

	summary := theme.Pane.Width(summaryW).Render(m.renderSummary())
	chart := theme.PaneActive.Width(chartW).Render(m.renderChart(chartW-2, m.chartHeight()))
	top := lipgloss.JoinHorizontal(lipgloss.Top, summary, chart)

	events := theme.Pane.Width(m.width - 2).Render(m.renderEvents(m.height - lipgloss.Height(top) - 4))
	return lipgloss.JoinVertical(lipgloss.Left, top, events)
}

func (m Model) chartHeight() int {
	h := m.height/2 - 4
	if h < 4 {
		return 4
	}
	return h
}

func (m Model) renderSummary() string {
	s := m.session
	gauge := lipgloss.NewStyle().Foreground(theme.StatusColor(s.Status)).Bold(true)

	var sb strings.Builder
	sb.WriteString(theme.Title.Render(s.ProfileName) + "\n\n")
	sb.WriteString(gauge.Render(fmt.Sprintf("%.3f %%  %s", s.CurrentBAC, strings.ToUpper(s.Status))) + "\n\n")
	sb.WriteString(theme.Muted.Render("peak:    ") + fmt.Sprintf("%.3f %%", s.PeakBAC) + "\n")
	sb.WriteString(theme.Muted.Render("alcohol: ") + fmt.Sprintf("%.1f g", s.TotalGrams) + "\n")
	sb.WriteString(theme.Muted.Render("started: ") + s.StartedAt.Local().Format("15:04") +
		"  (" + FormatRemaining(s.EvaluatedAt.Sub(s.StartedAt)) + ")\n\n")
	sb.WriteString(theme.Muted.Render("sober:   ") + countdown(s.SoberIn, s.SoberAt) + "\n")
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("< %.2f:  ", m.thresholds.Legal)) + countdown(s.LegalIn, s.LegalAt) + "\n")
	if s.State == "closed" {
		sb.WriteString("\n" + theme.Hot.Render("session closed"))
	}
	return sb.String()
}

func (m Model) renderChart(width, height int) string {
	values := Resample(m.session.Series, width)
	ceiling := m.thresholds.Danger * 1.25
	for _, v := range values {
		ceiling = math.Max(ceiling, v)
	}
	bars := components.BarChart(values, height, ceiling, m.colorFor)
	axis := theme.Muted.Render(fmt.Sprintf("%.3f%% max", ceiling))
	return theme.Title.Render("BAC since start") + "  " + axis + "\n" + bars
}

func (m Model) colorFor(v float64) lipgloss.Color {
	switch {
	case v >= m.thresholds.Danger:
		return theme.Red
	case v >= m.thresholds.Caution:
		return theme.Yellow
	default:
		return theme.Green
	}
}

func (m Model) renderEvents(rows int) string {
	events := m.session.Events
	if rows < 1 {
		rows = 1
	}
	if len(events) > rows {
		events = events[len(events)-rows:]
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Events") + "\n")
	if len(events) == 0 {
		sb.WriteString(theme.Muted.Render("nothing logged yet"))
		return sb.String()
	}
	for _, ev := range events {
		id := ev.ID
		if len(id) > 8 {
			id = id[:8]
		}
		amount := fmt.Sprintf("%5.1f g", ev.Grams)
		if ev.Kind == "food" {
			amount = fmt.Sprintf("x %.2f", ev.AbsorptionFactor)
		}
		sb.WriteString(fmt.Sprintf("%s  %s  %-5s %-8s %s\n",
			theme.Muted.Render(id), ev.At.Local().Format("15:04"), ev.Kind, amount, ev.Label))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func countdown(in time.Duration, at time.Time) string {
	if in <= 0 {
		return "now"
	}
	return FormatRemaining(in) + " (" + at.Local().Format("15:04") + ")"
}

// FormatRemaining renders d as hours and minutes, rounding minutes up.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	minutes := int(math.Ceil(d.Minutes()))
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// Resample spreads n columns evenly over the series and interpolates each
// one linearly between its neighbouring points.
func Resample(points []sessiondto.Point, n int) []float64 {
	if len(points) == 0 || n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if len(points) == 1 || n == 1 {
		for i := range out {
			out[i] = points[len(points)-1].BAC
		}
		return out
	}
	start := points[0].At
	span := points[len(points)-1].At.Sub(start)
	for i := range out {
		t := start.Add(time.Duration(float64(span) * float64(i) / float64(n-1)))
		j := sort.Search(len(points), func(k int) bool { return !points[k].At.Before(t) })
		switch {
		case j == 0:
			out[i] = points[0].BAC
		case j == len(points):
			out[i] = points[len(points)-1].BAC
		default:
			a, b := points[j-1], points[j]
			gap := b.At.Sub(a.At)
			if gap <= 0 {
				out[i] = b.BAC
				continue
			}
			frac := float64(t.Sub(a.At)) / float64(gap)
			out[i] = a.BAC + (b.BAC-a.BAC)*frac
		}
	}
	return out
}
