package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"photosort/internal/codec"
	"photosort/internal/cropmap"
)

const upperHalfBlock = "▀"

// shader rewrites the color of the display pixel at (x, y).
type shader func(x, y int, c color.Color) color.Color

// fitPreview scales img into a box of cols x rows terminal cells, capped at
// maxW x maxH pixels. Every cell holds two vertically stacked pixels.
func fitPreview(img image.Image, cols, rows, maxW, maxH int) (image.Image, cropmap.Viewport) {
	b := img.Bounds()
	boxW, boxH := cols, rows*2
	if maxW > 0 {
		boxW = min(boxW, maxW)
	}
	if maxH > 0 {
		boxH = min(boxH, maxH)
	}
	vp := cropmap.Fit(b.Dx(), b.Dy(), max(boxW, 1), max(boxH, 1))
	return codec.Scale(img, vp.Width, vp.Height), vp
}

// renderBlocks draws img with upper half blocks: the foreground paints the
// even row and the background the odd row below it.
func renderBlocks(img image.Image, shade shader) string {
	b := img.Bounds()
	if b.Empty() {
		return ""
	}

	pixel := func(x, y int) lipgloss.Color {
		c := img.At(b.Min.X+x, b.Min.Y+y)
		if shade != nil {
			c = shade(x, y, c)
		}
		return hexColor(c)
	}

	width, height := b.Dx(), b.Dy()
	lines := make([]string, 0, (height+1)/2)
	for y := 0; y < height; y += 2 {
		var sb strings.Builder
		for x := 0; x < width; x++ {
			style := lipgloss.NewStyle().Foreground(pixel(x, y))
			if y+1 < height {
				style = style.Background(pixel(x, y+1))
			}
			sb.WriteString(style.Render(upperHalfBlock))
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}

func dim(c color.Color) color.Color {
	r, g, b, a := c.RGBA()
	return color.RGBA64{R: uint16(r / 3), G: uint16(g / 3), B: uint16(b / 3), A: uint16(a)}
}
