//go:build sdl2

package sdl2

import "github.com/veandco/go-sdl2/sdl"

// DrawText renders a line of text in the debug window. There's no bitmap
// font asset bundled, so each character is drawn as a small outlined box at
// monospace spacing -- enough to see where a label or value sits without
// pulling in a font rendering dependency.
func DrawText(renderer *sdl.Renderer, text string, x, y, scale int32, r, g, b uint8) {
	if scale < 1 {
		scale = 1
	}

	renderer.SetDrawColor(r, g, b, 255)
	charWidth := int32(6) * scale
	boxWidth := int32(4) * scale
	boxHeight := int32(6) * scale

	for i, ch := range text {
		if ch == ' ' {
			continue
		}
		cx := x + int32(i)*charWidth
		rect := sdl.Rect{X: cx, Y: y, W: boxWidth, H: boxHeight}
		renderer.DrawRect(&rect)
	}
}
