package render

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramebufferClear(t *testing.T) {
	fb := NewFramebuffer(5, 3)
	c := RGB(10, 20, 30)
	fb.Clear(c)
	for i, p := range fb.Pixels {
		require.Equal(t, c, p, "pixel %d", i)
	}
}

func TestFramebufferBounds(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.SetPixel(-1, 0, RGB(1, 1, 1))
	fb.SetPixel(2, 0, RGB(1, 1, 1))
	fb.AddPixel(0, 5, [4]float32{1, 1, 1, 1})
	assert.Equal(t, color.RGBA{}, fb.GetPixel(5, 5))
	for _, p := range fb.Pixels {
		assert.Equal(t, color.RGBA{}, p)
	}
}

func TestFramebufferDrawLine(t *testing.T) {
	fb := NewFramebuffer(5, 5)
	c := RGB(255, 0, 0)
	fb.DrawLine(0, 0, 4, 4, c)
	for i := range 5 {
		assert.Equal(t, c, fb.GetPixel(i, i))
	}
	assert.Equal(t, color.RGBA{}, fb.GetPixel(4, 0))
}

func TestFramebufferSavePNG(t *testing.T) {
	fb := NewFramebuffer(4, 2)
	fb.Clear(RGB(0, 0, 0))
	fb.SetPixel(1, 0, RGB(255, 255, 255))

	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, fb.SavePNG(path, 3))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
	r, _, _, _ := img.At(4, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r, "upscaled pixel should stay white")
	r, _, _, _ = img.At(0, 0).RGBA()
	assert.Zero(t, r)
}

func TestFramebufferDrawHalfBlocks(t *testing.T) {
	fb := NewFramebuffer(2, 4)
	fb.SetPixel(0, 0, RGB(255, 0, 0))
	fb.SetPixel(0, 1, RGB(0, 0, 255))

	scr := uv.NewScreenBuffer(2, 2)
	fb.Draw(scr, uv.Rect(0, 0, 2, 2))

	cell := scr.CellAt(0, 0)
	require.NotNil(t, cell)
	assert.Equal(t, "▀", cell.Content)
	assert.Equal(t, color.Color(RGB(255, 0, 0)), cell.Style.Fg)
	assert.Equal(t, color.Color(RGB(0, 0, 255)), cell.Style.Bg)

	// Transparent pixels map to the terminal default.
	assert.Nil(t, scr.CellAt(1, 1).Style.Fg)
}

func TestDrawTextClips(t *testing.T) {
	scr := uv.NewScreenBuffer(4, 1)
	DrawText(scr, 2, 0, "abc", nil, nil)
	assert.Equal(t, "a", scr.CellAt(2, 0).Content)
	assert.Equal(t, "b", scr.CellAt(3, 0).Content)
	DrawText(scr, 0, 3, "zzz", nil, nil)
}
