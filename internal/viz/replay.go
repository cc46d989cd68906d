package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

const (
	fps           = 30
	canvasWidth   = 60
	canvasHeight  = 20
	trailLength   = 120
	targetSeconds = 10
	boundsPadding = 0.15
	panelWidth    = 30
)

type TickMsg time.Time

// ReplayModel plays back a recorded Scene.
type ReplayModel struct {
	scene   *Scene
	canvas  *Canvas
	frame   int
	speed   int
	playing bool
	trails  bool

	// camera eases toward the bounds of the current frame
	spring harmonica.Spring
	view   [4]float64
	vel    [4]float64
}

// NewReplayModel starts playing from frame 0 at a speed that covers the
// whole run in roughly ten seconds.
func NewReplayModel(s *Scene) ReplayModel {
	speed := s.Frames() / (fps * targetSeconds)
	if speed < 1 {
		speed = 1
	}

	m := ReplayModel{
		scene:   s,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		speed:   speed,
		playing: true,
		trails:  true,
		spring:  harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
	m.view = boundsArray(m.target())
	return m
}

func boundsArray(b Bounds) [4]float64 {
	return [4]float64{b.MinX, b.MaxX, b.MinY, b.MaxY}
}

func (m ReplayModel) Frame() int        { return m.frame }
func (m ReplayModel) Speed() int        { return m.speed }
func (m ReplayModel) Playing() bool     { return m.playing }
func (m ReplayModel) TrailsShown() bool { return m.trails }

// View bounds the camera currently shows.
func (m ReplayModel) Bounds() Bounds {
	return Bounds{MinX: m.view[0], MaxX: m.view[1], MinY: m.view[2], MaxY: m.view[3]}
}

func (m ReplayModel) target() Bounds {
	return m.scene.FrameBounds(m.frame).Pad(boundsPadding)
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m ReplayModel) Init() tea.Cmd {
	return tick()
}

func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			if !m.playing && m.frame == m.scene.Frames()-1 {
				m.frame = 0
			}
			m.playing = !m.playing
		case "[":
			m.seek(-m.speed)
		case "]":
			m.seek(m.speed)
		case "+", "=":
			m.speed *= 2
		case "-", "_":
			if m.speed > 1 {
				m.speed /= 2
			}
		case "t":
			m.trails = !m.trails
		case "r":
			m.frame = 0
			m.playing = true
		}
		return m, nil

	case tea.WindowSizeMsg:
		w := msg.Width - 40
		h := msg.Height - 6
		if w >= 20 && h >= 8 {
			m.canvas = NewCanvas(w, h)
		}
		return m, nil

	case TickMsg:
		if m.playing {
			m.seek(m.speed)
			if m.frame == m.scene.Frames()-1 {
				m.playing = false
			}
		}
		m.follow()
		return m, tick()
	}

	return m, nil
}

func (m *ReplayModel) seek(delta int) {
	m.frame += delta
	if m.frame < 0 {
		m.frame = 0
	}
	if last := m.scene.Frames() - 1; m.frame > last {
		m.frame = last
	}
}

func (m *ReplayModel) follow() {
	target := boundsArray(m.target())
	for i := range m.view {
		m.view[i], m.vel[i] = m.spring.Update(m.view[i], m.vel[i], target[i])
	}
}

func (m ReplayModel) View() string {
	trail := 0
	if m.trails {
		trail = trailLength * m.speed
	}
	DrawScene(m.canvas, m.scene, m.frame, m.Bounds(), trail)

	left := CanvasStyle.Render(m.canvas.String())
	right := Panel.Render(m.stats())

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("springnet replay · " + Title.Render(m.scene.Name)))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")
	b.WriteString(KeyHint.Render("space play/pause · [ ] step · +/- speed · t trails · r restart · q quit"))
	return b.String()
}

func (m ReplayModel) stats() string {
	var lines []string

	status := StatusPaused.Render("PAUSED")
	if m.playing {
		status = StatusRunning.Render("PLAYING")
	}
	lines = append(lines, status, "")

	total := m.scene.Frames() - 1
	lines = append(lines,
		Metric("time", fmt.Sprintf("%.4f s", m.scene.Time(m.frame))),
		Metric("frame", fmt.Sprintf("%d / %d", m.frame, total)),
		Metric("speed", fmt.Sprintf("%dx", m.speed)),
	)
	progress := 1.0
	if total > 0 {
		progress = float64(m.frame) / float64(total)
	}
	lines = append(lines, ProgressBar(progress, 24), "")

	if e := m.scene.Energy; len(e) > 0 {
		lines = append(lines, Metric("energy", fmt.Sprintf("%.4f J", e[m.frame])))
		if e[0] != 0 {
			lines = append(lines, Metric("drift", fmt.Sprintf("%+.3f %%", (e[m.frame]-e[0])/e[0]*100)))
		}
		lines = append(lines, SparklineChart(e[:m.frame+1], 24), "")
	}

	lines = append(lines, Separator(panelWidth))

	snap := m.scene.Trajectory[m.frame]
	shown := len(snap.X)
	if shown > 6 {
		shown = 6
	}
	for i := 0; i < shown; i++ {
		lines = append(lines, Metric(fmt.Sprintf("m%d", i), fmt.Sprintf("(%.3f, %.3f)", snap.X[i], snap.Y[i])))
	}
	if len(snap.X) > shown {
		lines = append(lines, Subtle.Render(fmt.Sprintf("… %d more masses", len(snap.X)-shown)))
	}

	return strings.Join(lines, "\n")
}
