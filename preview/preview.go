// Package preview renders a recorded track as a still image.
//
// The track is drawn top-down on the X/Y plane: the path between samples,
// a marker for the first and last pose, and a caption with the sample count
// and duration.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/teranos/posetrack"
	"github.com/teranos/posetrack/trip"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Config defines the look of a preview image.
type Config struct {
	Width      int        // Image width in pixels
	Height     int        // Image height in pixels
	Margin     int        // Space kept clear around the path
	Background color.RGBA // Background color
	Path       color.RGBA // Line between samples
	Start      color.RGBA // First sample marker
	End        color.RGBA // Last sample marker
	Caption    color.RGBA // Caption text color
}

// DefaultConfig returns a dark 320x240 preview.
func DefaultConfig() Config {
	return Config{
		Width:      320,
		Height:     240,
		Margin:     24,
		Background: color.RGBA{0, 0, 0, 255},
		Path:       color.RGBA{80, 200, 255, 255},
		Start:      color.RGBA{80, 255, 120, 255},
		End:        color.RGBA{255, 90, 90, 255},
		Caption:    color.RGBA{255, 255, 255, 255},
	}
}

// Renderer draws tracks with a fixed configuration.
type Renderer struct {
	config Config
	face   font.Face
}

// NewRenderer creates a renderer. Sizes too small to hold a path fall back to
// the defaults.
func NewRenderer(config Config) *Renderer {
	def := DefaultConfig()
	if config.Width <= 2*config.Margin || config.Height <= 2*config.Margin {
		config.Width, config.Height, config.Margin = def.Width, def.Height, def.Margin
	}
	return &Renderer{
		config: config,
		face:   basicfont.Face7x13,
	}
}

// Render draws track onto a new image. Empty or invalid tracks are refused.
func (r *Renderer) Render(track posetrack.Track) (*image.RGBA, error) {
	if err := track.Validate(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.config.Background), image.Point{}, draw.Src)

	project := r.projection(track)

	prev := project(track[0].Position)
	for _, s := range track[1:] {
		p := project(s.Position)
		drawLine(img, prev, p, r.config.Path)
		prev = p
	}

	drawMarker(img, project(track[0].Position), r.config.Start)
	drawMarker(img, project(track[len(track)-1].Position), r.config.End)

	r.caption(img, Caption(track))

	return img, nil
}

// Encode renders track and writes it as PNG.
func (r *Renderer) Encode(w io.Writer, track posetrack.Track) error {
	img, err := r.Render(track)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return trip.Wrap(trip.TypeEncode, err, "writing preview image", nil)
	}
	return nil
}

// Caption is the text printed under a preview.
func Caption(track posetrack.Track) string {
	return fmt.Sprintf("%d samples  %.2fs", track.Len(), track.Duration())
}

// projection maps world X/Y onto the image, keeping the aspect ratio and
// flipping Y so that up is up.
func (r *Renderer) projection(track posetrack.Track) func(posetrack.Vector3) image.Point {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range track {
		minX = math.Min(minX, s.Position.X)
		maxX = math.Max(maxX, s.Position.X)
		minY = math.Min(minY, s.Position.Y)
		maxY = math.Max(maxY, s.Position.Y)
	}

	areaW := float64(r.config.Width - 2*r.config.Margin)
	areaH := float64(r.config.Height - 2*r.config.Margin)

	spanX, spanY := maxX-minX, maxY-minY
	scale := 1.0
	if spanX > 0 || spanY > 0 {
		scale = math.Min(safeDiv(areaW, spanX), safeDiv(areaH, spanY))
	}

	// centre the path in the drawing area
	offX := float64(r.config.Margin) + (areaW-spanX*scale)/2
	offY := float64(r.config.Margin) + (areaH-spanY*scale)/2

	return func(v posetrack.Vector3) image.Point {
		x := offX + (v.X-minX)*scale
		y := offY + (maxY-v.Y)*scale
		return image.Point{
			X: clamp(x, r.config.Width-1),
			Y: clamp(y, r.config.Height-1),
		}
	}
}

// clamp keeps projected points on the image even for spans that overflow.
func clamp(f float64, max int) int {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > float64(max) {
		return max
	}
	return int(math.Round(f))
}

func safeDiv(a, b float64) float64 {
	if b <= 0 {
		return math.Inf(1)
	}
	return a / b
}

func (r *Renderer) caption(img *image.RGBA, text string) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(r.config.Caption),
		Face: r.face,
	}

	x := 4
	y := r.config.Height - 6
	drawer.Dot = fixed.Point26_6{
		X: fixed.Int26_6(x << 6),
		Y: fixed.Int26_6(y << 6),
	}
	drawer.DrawString(text)
}

// drawLine is Bresenham's line algorithm.
func drawLine(img *image.RGBA, a, b image.Point, c color.RGBA) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}

	err := dx + dy
	x, y := a.X, a.Y
	for {
		img.SetRGBA(x, y, c)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func drawMarker(img *image.RGBA, p image.Point, c color.RGBA) {
	for y := p.Y - 2; y <= p.Y+2; y++ {
		for x := p.X - 2; x <= p.X+2; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
