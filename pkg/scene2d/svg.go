package scene2d

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"
	"strings"
)

var roleColors = map[string]string{
	"producer":    "#2e7d32",
	"injector":    "#1565c0",
	"observation": "#ef6c00",
}

var yearColors = []string{"#ffb300", "#8e24aa", "#00897b"}

// RenderSVG writes the scene as a standalone SVG document. North is up.
func RenderSVG(w io.Writer, s *Scene2D) error {
	bw := bufio.NewWriter(w)
	b := s.Bounds
	pad := math.Max(b.Width(), b.Height()) * 0.05
	if pad == 0 {
		pad = 10
	}
	width, height := b.Width()+2*pad, b.Height()+2*pad
	// Flip y so that larger northings are drawn higher.
	tx := func(c [2]float64) (float64, float64) {
		return c[0] - b.Min[0] + pad, b.Max[1] - c[1] + pad
	}
	path := func(coords [][2]float64) string {
		var sb strings.Builder
		for i, c := range coords {
			x, y := tx(c)
			if i == 0 {
				fmt.Fprintf(&sb, "M%.1f %.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f %.1f", x, y)
			}
		}
		sb.WriteString(" Z")
		return sb.String()
	}
	stroke := math.Max(width, height) / 400

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, math.Min(width, 1200), math.Min(width, 1200)*height/width)
	fmt.Fprintf(bw, "<title>%s %s</title>\n", html.EscapeString(s.Metadata.Project), html.EscapeString(s.Metadata.Triple))
	fmt.Fprintf(bw, `<rect width="100%%" height="100%%" fill="#fafafa"/>`+"\n")

	if len(s.Contour) > 0 {
		fmt.Fprintf(bw, `<path d="%s" fill="none" stroke="#616161" stroke-width="%.2f" stroke-dasharray="%.1f"/>`+"\n",
			path(s.Contour), stroke, 4*stroke)
	}

	fmt.Fprintln(bw, `<g id="zones" fill-opacity="0.15">`)
	for _, z := range s.Zones {
		color := yearColors[0]
		if z.SurveyYear > 0 {
			color = yearColors[z.SurveyYear%len(yearColors)]
		}
		fmt.Fprintf(bw, `<path d="%s" fill="%s" stroke="%s" stroke-width="%.2f"><title>%s</title></path>`+"\n",
			path(z.Polygon), color, color, stroke, html.EscapeString(z.Well))
	}
	fmt.Fprintln(bw, "</g>")

	fmt.Fprintln(bw, `<g id="first-row" stroke="#90caf9">`)
	for _, l := range s.FirstRow {
		x1, y1 := tx(l.Start)
		x2, y2 := tx(l.End)
		fmt.Fprintf(bw, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke-width="%.2f"/>`+"\n", x1, y1, x2, y2, stroke)
	}
	fmt.Fprintln(bw, "</g>")

	fmt.Fprintln(bw, `<g id="wells">`)
	r := 3 * stroke
	for _, wl := range s.Wells {
		color := roleColors[wl.Role]
		if color == "" {
			color = "#000000"
		}
		hx, hy := tx(wl.Head)
		if wl.Kind == "horizontal" {
			ex, ey := tx(wl.Toe)
			fmt.Fprintf(bw, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.2f"/>`+"\n",
				hx, hy, ex, ey, color, 2*stroke)
		}
		outline := "none"
		if wl.Selected {
			outline = "#d50000"
		}
		fmt.Fprintf(bw, `<circle cx="%.1f" cy="%.1f" r="%.2f" fill="%s" stroke="%s" stroke-width="%.2f"/>`+"\n",
			hx, hy, r, color, outline, stroke)
		fmt.Fprintf(bw, `<text x="%.1f" y="%.1f" font-size="%.1f">%s</text>`+"\n",
			hx+1.5*r, hy-1.5*r, 4*r, html.EscapeString(wl.Name))
	}
	fmt.Fprintln(bw, "</g>")
	fmt.Fprintln(bw, "</svg>")
	return bw.Flush()
}
