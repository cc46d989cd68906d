package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/springnet/internal/dynamo"
	"github.com/san-kum/springnet/internal/viz"
)

// palette cycles per mass.
var palette = []string{"#00ff88", "#00ccff", "#ff00ff", "#ffcc00", "#ff4444", "#88ff88"}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height))

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type projector struct {
	b             viz.Bounds
	width, height float64
}

func (p projector) at(v dynamo.Vec2) (float64, float64) {
	x := (v.X - p.b.MinX) / p.b.Width() * p.width
	y := p.height - (v.Y-p.b.MinY)/p.b.Height()*p.height
	return x, y
}

// TrajectoryToSVG draws the path of every mass of s, plus the springs,
// fixtures and masses at the final frame.
func TrajectoryToSVG(s *viz.Scene, width, height int) string {
	if s == nil || s.Frames() == 0 {
		return ""
	}

	p := projector{b: s.Bounds().Pad(0.1), width: float64(width), height: float64(height)}
	last := s.Frames() - 1

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i := 0; i < s.Trajectory.NumMasses(); i++ {
		color := palette[i%len(palette)]
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" stroke-opacity="0.7" d="M`, color))
		xs, ys := s.Trajectory.Mass(i)
		for j := range xs {
			x, y := p.at(dynamo.Vec2{X: xs[j], Y: ys[j]})
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString(`<g stroke="#888899" stroke-width="1">` + "\n")
	for _, sp := range s.Springs {
		x0, y0 := p.at(s.Position(sp.A, last))
		x1, y1 := p.at(s.Position(sp.B, last))
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", x0, y0, x1, y1))
	}
	sb.WriteString("</g>\n")

	for _, f := range s.Fixtures {
		x, y := p.at(f)
		sb.WriteString(fmt.Sprintf(`<rect class="fixture" x="%.1f" y="%.1f" width="6" height="6" fill="#ffffff"/>`+"\n", x-3, y-3))
	}

	snap := s.Trajectory[last]
	for i := range snap.X {
		x, y := p.at(dynamo.Vec2{X: snap.X[i], Y: snap.Y[i]})
		sb.WriteString(fmt.Sprintf(`<circle class="mass" cx="%.1f" cy="%.1f" r="4" fill="%s"/>`+"\n", x, y, palette[i%len(palette)]))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
