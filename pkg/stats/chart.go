package stats

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Chart defaults.
const (
	DefaultWidth = 480
	padding      = 10
	minBarWidth  = 40
)

var (
	backgroundColor = color.RGBA{255, 255, 255, 255}
	textColor       = color.RGBA{33, 33, 33, 255}

	// barColors is indexed by row.
	barColors = []color.RGBA{
		{66, 133, 244, 255},
		{219, 68, 55, 255},
		{244, 180, 0, 255},
		{15, 157, 88, 255},
		{171, 71, 188, 255},
		{0, 172, 193, 255},
		{255, 112, 67, 255},
		{158, 157, 36, 255},
		{92, 107, 192, 255},
		{240, 98, 146, 255},
	}
)

type chartConfig struct {
	face  font.Face
	width int
	title string
	scale int
}

// ChartOption configures Chart.
type ChartOption func(*chartConfig)

// WithFace sets the font used for labels. Defaults to basicfont.Face7x13.
func WithFace(face font.Face) ChartOption {
	return func(c *chartConfig) {
		c.face = face
	}
}

// WithWidth sets the chart width in pixels before scaling.
func WithWidth(width int) ChartOption {
	return func(c *chartConfig) {
		c.width = width
	}
}

// WithTitle draws a title row above the bars.
func WithTitle(title string) ChartOption {
	return func(c *chartConfig) {
		c.title = title
	}
}

// WithScale enlarges the finished chart by an integer factor.
func WithScale(scale int) ChartOption {
	return func(c *chartConfig) {
		c.scale = scale
	}
}

// BarColor returns the color of the bar on the given row.
func BarColor(row int) color.RGBA {
	return barColors[row%len(barColors)]
}

// Chart draws one horizontal bar per entry, in the given order, with the
// token type on the left and the count after the bar. The longest bar
// belongs to the highest count.
func Chart(entries []Entry, opts ...ChartOption) *image.RGBA {
	cfg := chartConfig{
		face:  basicfont.Face7x13,
		width: DefaultWidth,
		scale: 1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	l := newLayout(entries, cfg)
	img := image.NewRGBA(image.Rect(0, 0, l.width, l.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	y := padding
	if cfg.title != "" {
		drawText(img, cfg.face, padding, y+l.ascent, cfg.title)
		y += l.rowHeight
	}

	if len(entries) == 0 {
		drawText(img, cfg.face, padding, y+l.ascent, "(sin tokens)")
	}

	for i, e := range entries {
		drawText(img, cfg.face, padding, y+l.ascent+2, e.Type.String())

		w := l.barWidth(e.Count)
		bar := image.Rect(l.barX, y+2, l.barX+w, y+l.rowHeight-2)
		draw.Draw(img, bar, image.NewUniform(BarColor(i)), image.Point{}, draw.Src)

		drawText(img, cfg.face, l.barX+w+padding/2, y+l.ascent+2, strconv.Itoa(e.Count))
		y += l.rowHeight
	}

	if cfg.scale <= 1 {
		return img
	}

	scaled := image.NewRGBA(image.Rect(0, 0, l.width*cfg.scale, l.height*cfg.scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
	return scaled
}

type layout struct {
	width, height int
	rowHeight     int
	ascent        int
	barX          int
	barMax        int
	maxCount      int
}

func newLayout(entries []Entry, cfg chartConfig) layout {
	metrics := cfg.face.Metrics()
	l := layout{
		rowHeight: metrics.Height.Ceil() + 6,
		ascent:    metrics.Ascent.Ceil(),
	}

	labelWidth := 0
	for _, e := range entries {
		labelWidth = max(labelWidth, font.MeasureString(cfg.face, e.Type.String()).Ceil())
		l.maxCount = max(l.maxCount, e.Count)
	}
	countWidth := font.MeasureString(cfg.face, strconv.Itoa(l.maxCount)).Ceil()

	l.barX = 2*padding + labelWidth
	l.barMax = cfg.width - l.barX - countWidth - 2*padding
	if l.barMax < minBarWidth {
		l.barMax = minBarWidth
	}
	l.width = l.barX + l.barMax + countWidth + 2*padding

	rows := max(len(entries), 1)
	if cfg.title != "" {
		rows++
	}
	l.height = 2*padding + rows*l.rowHeight

	return l
}

// barWidth scales count against the largest count. Non-zero counts get at
// least one pixel.
func (l layout) barWidth(count int) int {
	if l.maxCount == 0 || count <= 0 {
		return 0
	}
	return max(count*l.barMax/l.maxCount, 1)
}

func drawText(dst draw.Image, face font.Face, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(textColor),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

// GoFace returns the Go Regular font at the given size, for charts that
// need more than the fixed 7x13 bitmap font.
func GoFace(size float64) (font.Face, error) {
	tt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

// Image formats accepted by Encode.
const (
	FormatPNG = "png"
	FormatBMP = "bmp"
)

// FormatFromPath picks the image format from a file extension. Anything
// other than .bmp is PNG.
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".bmp") {
		return FormatBMP
	}
	return FormatPNG
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatPNG, "":
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unsupported image format: %s", format)
}
