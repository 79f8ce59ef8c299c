// Package ui is the dashboard's display: a bubbletea program that owns the
// telemetry engine and drives it from one event loop.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/Dicklesworthstone/pcmonitor/internal/dashboard"
	"github.com/Dicklesworthstone/pcmonitor/internal/frame"
	"github.com/Dicklesworthstone/pcmonitor/internal/model"
	"github.com/Dicklesworthstone/pcmonitor/internal/nav"
	"github.com/Dicklesworthstone/pcmonitor/internal/serialport"
)

// staleAfter marks the footer's data age as a warning.
const staleAfter = 3 * time.Second

type Options struct {
	Modes       []nav.Mode
	FramePeriod time.Duration
	Gestures    *nav.Gestures
	// Events is the telemetry link. It may be nil.
	Events <-chan serialport.Event
	// Weather returns the latest weather snapshot; nil disables the page.
	Weather func() model.Weather
	Publish func(dashboard.Snapshot)
	// PortalURL is shown on the setup screen.
	PortalURL string
	// OnSetup is told when setup mode is entered or left.
	OnSetup func(active bool)
	// Setup starts on the setup screen.
	Setup bool
	Now   func() time.Time
}

type linkState struct {
	connected bool
	port      string
	err       error
	closed    bool
}

// Model renders the engine's cached frame and feeds it input.
type Model struct {
	opts     Options
	period   time.Duration
	engine   *dashboard.Engine
	gestures *nav.Gestures
	keys     keyMap
	help     help.Model

	setup atomic.Bool

	linkMu sync.Mutex
	link   linkState

	frame  string
	width  int
	height int
}

// Messages
type (
	frameMsg      time.Time
	linkMsg       serialport.Event
	linkClosedMsg struct{}
)

func New(opts Options) *Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Gestures == nil {
		opts.Gestures = nav.NewGestures(nav.DefaultSwipeThreshold, nav.DefaultLongPress, nav.DefaultDebounce)
	}
	period := opts.FramePeriod
	if period <= 0 {
		period = frame.DefaultPeriod
	}
	m := &Model{
		opts:     opts,
		period:   period,
		gestures: opts.Gestures,
		keys:     defaultKeys(),
		help:     help.New(),
		width:    80,
		height:   24,
	}
	m.engine = dashboard.New(opts.Now(), dashboard.Options{
		Modes:       opts.Modes,
		FramePeriod: period,
		Render:      m.render,
		Publish:     opts.Publish,
	})
	m.setup.Store(opts.Setup)
	return m
}

func (m *Model) Engine() *dashboard.Engine { return m.engine }

// SetupActive is safe to call from other goroutines.
func (m *Model) SetupActive() bool { return m.setup.Load() }

// LinkStatus describes the telemetry link. It is safe to call from other
// goroutines.
func (m *Model) LinkStatus() string {
	m.linkMu.Lock()
	l := m.link
	m.linkMu.Unlock()
	switch {
	case m.opts.Events == nil:
		return "no link"
	case l.port == "":
		return "waiting for link"
	case l.closed:
		return l.port + " closed"
	case l.connected:
		return l.port + " connected"
	case l.err != nil:
		return l.port + " disconnected: " + l.err.Error()
	}
	return l.port + " disconnected"
}

func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func waitForEvent(ch <-chan serialport.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return linkClosedMsg{}
		}
		return linkMsg(ev)
	}
}

func (m *Model) Init() tea.Cmd {
	m.render(m.opts.Now())
	if m.opts.Events == nil {
		return frameCmd(m.period)
	}
	return tea.Batch(frameCmd(m.period), waitForEvent(m.opts.Events))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.render(m.opts.Now())
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg, m.opts.Now())
	case linkMsg:
		m.handleLink(serialport.Event(msg))
		return m, waitForEvent(m.opts.Events)
	case linkClosedMsg:
		m.linkMu.Lock()
		m.link.connected = false
		m.link.closed = true
		m.linkMu.Unlock()
	case frameMsg:
		now := time.Time(msg)
		if m.gestures.Hold(now) == nav.ActionSetup {
			m.enterSetup()
		}
		m.engine.Tick(now)
		return m, frameCmd(m.period)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	now := m.opts.Now()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Back):
		m.leaveSetup()
	case key.Matches(msg, m.keys.Setup):
		m.enterSetup()
	case key.Matches(msg, m.keys.Left):
		m.apply(m.gestures.Button(nav.ButtonLeft, now), now)
	case key.Matches(msg, m.keys.Right):
		m.apply(m.gestures.Button(nav.ButtonRight, now), now)
	}
	return nil
}

// handleMouse treats a left-button drag as a touch contact. Drag motion
// arrives as MouseActionMotion with the left button still reported.
func (m *Model) handleMouse(msg tea.MouseMsg, now time.Time) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && !m.gestures.Pressed() {
			m.gestures.Press(msg.X, now)
		}
	case tea.MouseActionMotion:
		m.gestures.Move(msg.X)
	case tea.MouseActionRelease:
		if !m.gestures.Pressed() {
			return
		}
		m.gestures.Move(msg.X)
		m.apply(m.gestures.Release(now), now)
	}
}

func (m *Model) handleLink(ev serialport.Event) {
	if len(ev.Data) > 0 {
		m.engine.Ingest(ev.Data, m.opts.Now())
		return
	}
	m.linkMu.Lock()
	m.link = linkState{connected: ev.Connected, port: ev.Port, err: ev.Err}
	m.linkMu.Unlock()
}

// apply performs a navigation action. Page changes are ignored while the
// setup screen is up.
func (m *Model) apply(a nav.Action, now time.Time) {
	switch a {
	case nav.ActionNone:
	case nav.ActionSetup:
		m.enterSetup()
	default:
		if !m.setup.Load() {
			m.engine.Apply(a, now)
		}
	}
}

func (m *Model) enterSetup() {
	if m.setup.Swap(true) {
		return
	}
	log.Info().Str("portal", m.opts.PortalURL).Msg("setup mode entered")
	if m.opts.OnSetup != nil {
		m.opts.OnSetup(true)
	}
	m.render(m.opts.Now())
}

func (m *Model) leaveSetup() {
	if !m.setup.Swap(false) {
		return
	}
	log.Info().Msg("setup mode left")
	if m.opts.OnSetup != nil {
		m.opts.OnSetup(false)
	}
	m.render(m.opts.Now())
}

// View returns the frame drawn by the last scheduler tick.
func (m *Model) View() string { return m.frame }

func (m *Model) render(now time.Time) {
	var body string
	switch mode := m.engine.Mode(); {
	case m.setup.Load():
		body = m.setupView()
	case mode == nav.ModeWeather:
		body = m.weatherView()
	default:
		metric, _ := mode.Metric()
		body = m.statsView(metric)
	}
	m.frame = lipgloss.JoinVertical(lipgloss.Left,
		m.header(now),
		body,
		m.footer(now),
		m.help.View(m.keys),
	)
}

func (m *Model) contentWidth() int {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m *Model) header(now time.Time) string {
	current := m.engine.Mode()
	tabs := make([]string, 0, len(m.engine.Modes()))
	for _, mode := range m.engine.Modes() {
		if mode == current && !m.setup.Load() {
			tabs = append(tabs, activeTab.Render(mode.String()))
			continue
		}
		tabs = append(tabs, tabStyle.Render(mode.String()))
	}
	return titleStyle.Render("PC Monitor") + "  " +
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "  " +
		subtleStyle.Render(now.Format("15:04:05"))
}

func (m *Model) statsView(metric model.Metric) string {
	s := m.engine.Stats()
	width := m.contentWidth()
	seq := m.engine.Sequence(metric)
	lo, hi := seq.Bounds()

	title := truncate(statsTitle(s, metric), width-6) + "  " + valueStyle.Render(fmtPct(s.Value(metric)))
	lines := []string{
		title,
		gaugeBar(m.engine.Displayed(), width),
		accentStyle.Render(sparkline(seq.Values())),
		subtleStyle.Render(fmt.Sprintf("last %d samples  min %.0f  max %.0f", seq.Len(), lo, hi)),
	}
	if metric == model.MetricCPU && s.IndoorTempF.Valid {
		lines = append(lines, subtleStyle.Render("indoor "+fmtTempF(s.IndoorTempF)))
	}
	return card(strings.ToUpper(metric.String()), strings.Join(lines, "\n"))
}

func (m *Model) weatherView() string {
	if m.opts.Weather == nil {
		return card("Weather", subtleStyle.Render("weather disabled"))
	}
	w := m.opts.Weather()
	if w.Updated == 0 {
		msg := "waiting for weather data"
		if !w.Connected && !w.OK {
			msg = "weather unavailable: press s to configure"
		}
		return card("Weather", warnStyle.Render(msg))
	}
	sym := w.TempSymbol()
	width := m.contentWidth()
	loc := time.FixedZone("", int(w.TimezoneOffset))

	lines := []string{
		valueStyle.Render(truncate(w.Location, width)) + "  " + truncate(w.Description, width/2),
		fmt.Sprintf("Now %s  feels %s  min %s  max %s",
			fmtTemp(w.Temperature, sym), fmtTemp(w.FeelsLike, sym),
			fmtTemp(w.TempMin, sym), fmtTemp(w.TempMax, sym)),
		fmt.Sprintf("Humidity %s  Wind %s", fmtHumidity(w.Humidity), fmtWind(w.WindSpeed, w.Units)),
	}
	status := okStyle.Render("updated " + time.Unix(w.Updated, 0).In(loc).Format("15:04"))
	if !w.OK {
		status = warnStyle.Render("last fetch failed, showing " + time.Unix(w.Updated, 0).In(loc).Format("15:04"))
	}
	lines = append(lines, status)

	slotWidth := width/len(w.Forecast) - 4
	days := make([]string, len(w.Forecast))
	for i, f := range w.Forecast {
		days[i] = forecastSlot(f, sym, slotWidth)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		card("Weather", strings.Join(lines, "\n")),
		lipgloss.JoinHorizontal(lipgloss.Top, days...),
	)
}

func (m *Model) setupView() string {
	portal := m.opts.PortalURL
	if portal == "" {
		portal = "the web server"
	}
	body := strings.Join([]string{
		"Open " + valueStyle.Render(portal+"/setup") + " in a browser",
		"to enter network and weather settings.",
		"",
		subtleStyle.Render("esc returns to the dashboard"),
	}, "\n")
	return card("Setup", body)
}

func (m *Model) footer(now time.Time) string {
	link := m.LinkStatus()
	age, ok := m.engine.DataAge(now)
	switch {
	case !ok:
		return subtleStyle.Render(link) + "  " + warnStyle.Render("no data yet")
	case age > staleAfter:
		return subtleStyle.Render(link) + "  " + warnStyle.Render(fmt.Sprintf("data stale %s", age.Round(time.Second)))
	}
	return subtleStyle.Render(link) + "  " + okStyle.Render(fmt.Sprintf("data %.1fs ago", age.Seconds()))
}

func fmtHumidity(o model.Optional) string {
	if !o.Valid || o.Value < 0 {
		return "--"
	}
	return fmt.Sprintf("%.0f%%", o.Value)
}

func fmtWind(o model.Optional, units string) string {
	if !o.Valid || o.Value < 0 {
		return "--"
	}
	if units == "imperial" {
		return fmt.Sprintf("%.1f mph", o.Value)
	}
	return fmt.Sprintf("%.1f m/s", o.Value)
}

// Run starts the bubbletea program and blocks until it exits or ctx is done.
func Run(ctx context.Context, m *Model, extra ...tea.ProgramOption) error {
	opts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)}, extra...)
	prog := tea.NewProgram(m, opts...)
	_, err := prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
