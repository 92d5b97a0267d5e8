package tui

import (
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WaveConfig controls the highlight that sweeps across the selected title
type WaveConfig struct {
	Enabled    bool
	Interval   time.Duration // tick interval
	WidthRatio float64       // crest width relative to the text
	CycleTicks int           // ticks for one sweep
	PauseTicks int           // ticks to rest between sweeps
}

// DefaultWaveConfig returns the default wave; REEF_REDUCE_MOTION disables it
func DefaultWaveConfig() WaveConfig {
	return WaveConfig{
		Enabled:    os.Getenv("REEF_REDUCE_MOTION") == "",
		Interval:   100 * time.Millisecond,
		WidthRatio: 0.25,
		CycleTicks: 18,
		PauseTicks: 5,
	}
}

// Wave is the animation state. Tick advances it from Update; Render is pure.
type Wave struct {
	cfg       WaveConfig
	trueColor bool
	center    float64
	paused    int
}

type waveTickMsg struct{}

func NewWave(cfg WaveConfig) *Wave {
	return &Wave{cfg: cfg, trueColor: os.Getenv("COLORTERM") == "truecolor"}
}

// Cmd schedules the next tick, or nothing when the wave is disabled
func (w *Wave) Cmd() tea.Cmd {
	if !w.cfg.Enabled {
		return nil
	}
	return tea.Tick(w.cfg.Interval, func(time.Time) tea.Msg { return waveTickMsg{} })
}

// Tick moves the crest along a text of textLen glyphs
func (w *Wave) Tick(textLen int) {
	if !w.cfg.Enabled || textLen == 0 {
		return
	}
	if w.paused > 0 {
		w.paused--
		if w.paused == 0 {
			w.center = -float64(textLen) * w.cfg.WidthRatio
		}
		return
	}

	span := float64(textLen) * (1 + 2*w.cfg.WidthRatio)
	w.center += span / float64(w.cfg.CycleTicks)

	if w.center >= float64(textLen)*(1+w.cfg.WidthRatio) {
		w.paused = w.cfg.PauseTicks
	}
}

// Reset restarts the sweep; call when the selection changes
func (w *Wave) Reset() {
	w.center = 0
	w.paused = 0
}

var (
	waveBase  = [3]float64{169, 191, 203} // ColorSecondaryText
	waveCrest = [3]float64{224, 255, 250}
)

// Render colours text with the crest at the current position
func (w *Wave) Render(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	if !w.cfg.Enabled || !w.trueColor {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true).Render(text)
	}

	sigma := math.Max(1, w.cfg.WidthRatio*float64(len(runes))/2)
	var b strings.Builder
	for i, r := range runes {
		dx := float64(i) - w.center
		weight := math.Exp(-(dx * dx) / (2 * sigma * sigma))
		color := lipgloss.Color(blendHex(waveBase, waveCrest, weight))
		b.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(r)))
	}
	return b.String()
}

func blendHex(from, to [3]float64, weight float64) string {
	const hex = "0123456789ABCDEF"
	out := []byte{'#'}
	for i := 0; i < 3; i++ {
		v := int(from[i]*(1-weight) + to[i]*weight)
		out = append(out, hex[v>>4], hex[v&0x0F])
	}
	return string(out)
}
