package tui

import (
	"image"
	"image/color"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"photosort/internal/codec"
	"photosort/internal/cropmap"
	"photosort/internal/triage"
)

const fastStep = 10

var cursorColor = color.RGBA{R: 0xff, G: 0x30, B: 0x30, A: 0xff}

// cropModel selects a rectangle on a downscaled copy of the pending image.
// The cursor moves in display pixels; space pins the opposite corner.
type cropModel struct {
	req    *triage.CropRequest
	vp     cropmap.Viewport
	img    image.Image
	cursor cropmap.Point
	anchor *cropmap.Point
	keys   cropKeyMap
}

type cropDecision int

const (
	cropPending cropDecision = iota
	cropConfirmed
	cropCancelled
)

func newCropModel(req *triage.CropRequest, boxW, boxH int) cropModel {
	vp := cropmap.Fit(req.Width(), req.Height(), max(boxW, 1), max(boxH, 1))
	return cropModel{
		req:    req,
		vp:     vp,
		img:    codec.Scale(req.Image, vp.Width, vp.Height),
		cursor: cropmap.Point{X: vp.Width / 2, Y: vp.Height / 2},
		keys:   defaultCropKeyMap(),
	}
}

func (c cropModel) update(msg tea.KeyMsg) (cropModel, cropDecision) {
	switch {
	case key.Matches(msg, c.keys.Cancel):
		return c, cropCancelled
	case key.Matches(msg, c.keys.Confirm):
		return c, cropConfirmed
	case key.Matches(msg, c.keys.Anchor):
		if c.anchor != nil {
			c.anchor = nil
		} else {
			p := c.cursor
			c.anchor = &p
		}
	case key.Matches(msg, c.keys.Left):
		c.move(-1, 0)
	case key.Matches(msg, c.keys.Right):
		c.move(1, 0)
	case key.Matches(msg, c.keys.Up):
		c.move(0, -1)
	case key.Matches(msg, c.keys.Down):
		c.move(0, 1)
	case key.Matches(msg, c.keys.FastLeft):
		c.move(-fastStep, 0)
	case key.Matches(msg, c.keys.FastRight):
		c.move(fastStep, 0)
	case key.Matches(msg, c.keys.FastUp):
		c.move(0, -fastStep)
	case key.Matches(msg, c.keys.FastDown):
		c.move(0, fastStep)
	}
	return c, cropPending
}

func (c *cropModel) move(dx, dy int) {
	c.cursor = c.vp.Clamp(cropmap.Point{X: c.cursor.X + dx, Y: c.cursor.Y + dy})
}

// selection is the display rectangle between the anchor and the cursor.
func (c cropModel) selection() cropmap.Rect {
	if c.anchor == nil {
		return cropmap.Rect{}
	}
	return c.vp.Selection(*c.anchor, c.cursor)
}

// result maps the selection to original pixels.
func (c cropModel) result() (cropmap.Rect, bool) {
	return c.vp.ToOriginal(c.selection())
}

func (c cropModel) view() string {
	sel := c.selection()
	cx := min(c.cursor.X, c.vp.Width-1)
	cy := min(c.cursor.Y, c.vp.Height-1)

	return renderBlocks(c.img, func(x, y int, px color.Color) color.Color {
		if x == cx && y == cy {
			return cursorColor
		}
		if c.anchor == nil {
			return px
		}
		inside := x >= sel.X && x < sel.X+sel.Width && y >= sel.Y && y < sel.Y+sel.Height
		if !inside {
			return dim(px)
		}
		return px
	})
}
