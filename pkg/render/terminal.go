package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. The framebuffer height should be 2x the terminal height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// Each terminal row represents 2 framebuffer rows
	// We use ▀ (upper half block) with fg=top color and bg=bottom color

	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1
		if topY >= fb.Height {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// DrawText writes s on one row starting at (x, y), one cell per rune,
// clipped to the screen bounds.
func DrawText(scr uv.Screen, x, y int, s string, fg, bg color.Color) {
	bounds := scr.Bounds()
	if y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	for _, r := range s {
		if x >= bounds.Max.X {
			return
		}
		if x >= bounds.Min.X {
			scr.SetCell(x, y, &uv.Cell{
				Content: string(r),
				Width:   1,
				Style:   uv.Style{Fg: fg, Bg: bg},
			})
		}
		x++
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}

// RGB creates an opaque color from 8-bit channels.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// Float4 converts an 8-bit colour to [0, 1] channels.
func Float4(c color.RGBA) [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}
