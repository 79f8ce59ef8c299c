package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/pcmonitor/internal/model"
	"github.com/Dicklesworthstone/pcmonitor/internal/nav"
	"github.com/Dicklesworthstone/pcmonitor/internal/serialport"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }
func (c *clock) frame() frameMsg         { return frameMsg(c.t) }
func newClock() *clock                   { return &clock{t: time.Unix(1_700_000_000, 0)} }
func keyMsg(s string) tea.KeyMsg         { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }
func arrow(t tea.KeyType) tea.KeyMsg     { return tea.KeyMsg{Type: t} }

// press, drag and release are shaped the way bubbletea decodes SGR mouse
// reports: drag motion keeps the left button and the legacy MouseLeft type.
func press(x int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress, Type: tea.MouseLeft}
}

func drag(x int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion, Type: tea.MouseLeft}
}

func hover(x int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: 5, Button: tea.MouseButtonNone, Action: tea.MouseActionMotion, Type: tea.MouseMotion}
}

func release(x int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: 5, Button: tea.MouseButtonNone, Action: tea.MouseActionRelease, Type: tea.MouseRelease}
}

func newModel(c *clock, opts Options) *Model {
	opts.Now = c.Now
	if opts.Gestures == nil {
		opts.Gestures = nav.NewGestures(10, nav.DefaultLongPress, nav.DefaultDebounce)
	}
	return New(opts)
}

func TestFormatHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"pct", fmtPct(42.4), "42%"},
		{"pct negative", fmtPct(-1), "N/A"},
		{"temp", fmtTempF(model.Some(71.6)), "72F"},
		{"temp missing", fmtTempF(model.None()), "-"},
		{"mbps", fmtMBps(12.345), "12.3 MB/s"},
		{"gb", fmtGB(model.Some(250)), "250 GB"},
		{"gb missing", fmtGB(model.None()), "N/A"},
		{"weather temp", fmtTemp(model.Some(20.2), "C"), "20°C"},
		{"humidity", fmtHumidity(model.Some(-3)), "--"},
		{"wind", fmtWind(model.Some(3.24), "metric"), "3.2 m/s"},
		{"truncate", truncate("Cloudy with rain", 6), "Cloud…"},
		{"truncate short", truncate("Sun", 6), "Sun"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Fatalf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestStatsTitle(t *testing.T) {
	s := model.Stats{CPU: 45, Mem: 60, GPU: 30, DiskPct: 5, DiskMBps: 10, CPUTempF: model.Some(70), FreeC: model.Some(100)}
	tests := []struct {
		metric model.Metric
		want   string
	}{
		{model.MetricCPU, "CPU 45% | MEM 60% 70F"},
		{model.MetricGPU, "GPU 30% | -"},
		{model.MetricDisk, "DISK 5% | 10.0 MB/s | C:100 GB D:N/A"},
	}
	for _, tt := range tests {
		if got := statsTitle(s, tt.metric); got != tt.want {
			t.Errorf("statsTitle(%v) = %q, want %q", tt.metric, got, tt.want)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := sparkline(nil); got != "" {
		t.Fatalf("empty sparkline = %q", got)
	}
	flat := []rune(sparkline([]float64{7, 7, 7}))
	for _, r := range flat {
		if r != sparkRunes[0] {
			t.Fatalf("flat series not on the bottom row: %q", string(flat))
		}
	}
	ramp := []rune(sparkline([]float64{10, 20, 30}))
	if len(ramp) != 3 || ramp[0] != sparkRunes[0] || ramp[2] != sparkRunes[len(sparkRunes)-1] {
		t.Fatalf("ramp normalized wrong: %q", string(ramp))
	}
}

func TestGaugeBar(t *testing.T) {
	tests := []struct {
		pct    float64
		filled int
	}{
		{0, 0}, {50, 10}, {100, 20}, {150, 20}, {-5, 0},
	}
	for _, tt := range tests {
		bar := gaugeBar(tt.pct, 20)
		if got := strings.Count(bar, gaugeFill); got != tt.filled {
			t.Errorf("gaugeBar(%v) filled %d cells, want %d", tt.pct, got, tt.filled)
		}
		if got := strings.Count(bar, gaugeFill) + strings.Count(bar, gaugeEmpty); got != 20 {
			t.Errorf("gaugeBar(%v) is %d cells wide", tt.pct, got)
		}
	}
}

func TestLinkEventsFeedEngine(t *testing.T) {
	c := newClock()
	m := newModel(c, Options{Events: make(chan serialport.Event)})
	if got := m.LinkStatus(); got != "waiting for link" {
		t.Fatalf("LinkStatus = %q", got)
	}

	m.Update(linkMsg{Connected: true, Port: "/dev/ttyACM0"})
	if got := m.LinkStatus(); got != "/dev/ttyACM0 connected" {
		t.Fatalf("LinkStatus = %q", got)
	}

	_, cmd := m.Update(linkMsg{Data: []byte("45,60,30,5,10,70,-999,100,-1\n"), Connected: true, Port: "/dev/ttyACM0"})
	if cmd == nil {
		t.Fatalf("link reader not re-armed")
	}
	if got := m.Engine().Stats().CPU; got != 45 {
		t.Fatalf("CPU = %v", got)
	}

	m.Update(c.frame())
	if view := m.View(); !strings.Contains(view, "CPU 45% | MEM 60% 70F") || !strings.Contains(view, "data 0.0s ago") {
		t.Fatalf("view missing stats:\n%s", view)
	}

	m.Update(linkMsg{Connected: false, Port: "/dev/ttyACM0", Err: errors.New("port gone")})
	if got := m.LinkStatus(); got != "/dev/ttyACM0 disconnected: port gone" {
		t.Fatalf("LinkStatus = %q", got)
	}
	m.Update(linkClosedMsg{})
	if got := m.LinkStatus(); got != "/dev/ttyACM0 closed" {
		t.Fatalf("LinkStatus = %q", got)
	}
}

func TestNoLink(t *testing.T) {
	m := newModel(newClock(), Options{})
	if got := m.LinkStatus(); got != "no link" {
		t.Fatalf("LinkStatus = %q", got)
	}
}

func TestFramesFollowScheduler(t *testing.T) {
	c := newClock()
	m := newModel(c, Options{})
	m.Update(c.frame())
	m.Update(c.frame())
	c.Advance(10 * time.Millisecond)
	m.Update(c.frame())
	if got := m.Engine().Frames(); got != 1 {
		t.Fatalf("frames = %d, want 1", got)
	}
	c.Advance(30 * time.Millisecond)
	m.Update(c.frame())
	if got := m.Engine().Frames(); got != 2 {
		t.Fatalf("frames = %d, want 2", got)
	}
}

func TestButtonsDebounced(t *testing.T) {
	c := newClock()
	m := newModel(c, Options{})

	m.Update(arrow(tea.KeyRight))
	if got := m.Engine().Mode(); got != nav.ModeGPU {
		t.Fatalf("mode = %v, want GPU", got)
	}
	c.Advance(50 * time.Millisecond)
	m.Update(arrow(tea.KeyLeft))
	if got := m.Engine().Mode(); got != nav.ModeGPU {
		t.Fatalf("bounce changed mode to %v", got)
	}
	c.Advance(200 * time.Millisecond)
	m.Update(keyMsg("h"))
	if got := m.Engine().Mode(); got != nav.ModeCPU {
		t.Fatalf("mode = %v, want CPU", got)
	}
}

func TestSwipe(t *testing.T) {
	tests := []struct {
		name string
		from int
		path []int
		to   int
		want nav.Mode
	}{
		{"left drag is next", 50, []int{46, 40, 31, 22, 12}, 10, nav.ModeGPU},
		{"right drag is prev", 10, []int{14, 25, 33, 40}, 40, nav.ModeDisk},
		{"short drag", 10, []int{12, 13}, 15, nav.ModeCPU},
		{"tap", 30, nil, 30, nav.ModeCPU},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClock()
			m := newModel(c, Options{})
			m.Update(press(tt.from))
			for _, x := range tt.path {
				c.Advance(20 * time.Millisecond)
				m.Update(drag(x))
			}
			c.Advance(20 * time.Millisecond)
			m.Update(release(tt.to))
			if got := m.Engine().Mode(); got != tt.want {
				t.Fatalf("mode = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStrayMouseEventsIgnored(t *testing.T) {
	c := newClock()
	m := newModel(c, Options{})
	m.Update(hover(70))
	m.Update(hover(5))
	m.Update(release(5))
	if got := m.Engine().Mode(); got != nav.ModeCPU {
		t.Fatalf("hover and stray release changed mode to %v", got)
	}
	m.Update(press(60))
	m.Update(press(20))
	m.Update(release(20))
	if got := m.Engine().Mode(); got != nav.ModeGPU {
		t.Fatalf("repeated press restarted the contact: mode = %v", got)
	}
}

func TestLongPressWithJitter(t *testing.T) {
	c := newClock()
	m := newModel(c, Options{})
	m.Update(press(50))
	for i, x := range []int{51, 50, 52, 51, 49, 50} {
		c.Advance(500 * time.Millisecond)
		m.Update(drag(x))
		m.Update(c.frame())
		if i < 5 && m.SetupActive() {
			t.Fatalf("setup entered after %v", time.Duration(i+1)*500*time.Millisecond)
		}
	}
	if !m.SetupActive() {
		t.Fatalf("jittery hold did not enter setup")
	}
	m.Update(release(50))
	if got := m.Engine().Mode(); got != nav.ModeCPU {
		t.Fatalf("release after long press changed mode to %v", got)
	}
}

func TestLongPressEntersSetup(t *testing.T) {
	c := newClock()
	var events []bool
	m := newModel(c, Options{
		PortalURL: "http://192.168.1.20:8080",
		OnSetup:   func(active bool) { events = append(events, active) },
	})

	m.Update(press(50))
	c.Advance(2 * time.Second)
	m.Update(c.frame())
	if m.SetupActive() {
		t.Fatalf("setup entered before the long-press duration")
	}
	c.Advance(time.Second)
	m.Update(c.frame())
	if !m.SetupActive() {
		t.Fatalf("long press did not enter setup")
	}
	if !strings.Contains(m.View(), "http://192.168.1.20:8080/setup") {
		t.Fatalf("setup screen missing portal URL:\n%s", m.View())
	}

	c.Advance(100 * time.Millisecond)
	m.Update(release(0))
	if got := m.Engine().Mode(); got != nav.ModeCPU {
		t.Fatalf("release after long press swiped to %v", got)
	}

	m.Update(arrow(tea.KeyRight))
	if got := m.Engine().Mode(); got != nav.ModeCPU {
		t.Fatalf("navigation during setup changed mode to %v", got)
	}

	m.Update(arrow(tea.KeyEsc))
	if m.SetupActive() {
		t.Fatalf("esc did not leave setup")
	}
	if len(events) != 2 || !events[0] || events[1] {
		t.Fatalf("OnSetup calls = %v", events)
	}
}

func TestWeatherPage(t *testing.T) {
	c := newClock()
	w := model.Weather{
		Location:    "Oslo",
		Description: "light rain",
		Units:       "metric",
		Temperature: model.Some(4.2),
		Updated:     c.t.Unix(),
		OK:          true,
		Connected:   true,
	}
	w.Forecast[0] = model.Forecast{Valid: true, Label: "Today", Description: "rain", High: model.Some(6), Low: model.Some(1)}
	m := newModel(c, Options{Modes: nav.AllModes, Weather: func() model.Weather { return w }})

	m.Engine().SetMode(nav.ModeWeather, c.Now())
	m.Update(c.frame())
	view := m.View()
	for _, want := range []string{"Oslo", "Now 4°C", "Today", "H 6°C", "no data"} {
		if !strings.Contains(view, want) {
			t.Fatalf("weather view missing %q:\n%s", want, view)
		}
	}
	if got := m.Engine().Target(); got != 0 {
		t.Fatalf("weather target = %v", got)
	}
}

func TestQuit(t *testing.T) {
	m := newModel(newClock(), Options{})
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatalf("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q did not quit")
	}
}
