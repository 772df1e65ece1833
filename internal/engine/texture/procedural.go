package texture

import (
	"image"

	"github.com/gogpu/gg"
)

// Grid draws a square texture with a border and cells-1 inner grid lines,
// used on the placeholder cube.
func Grid(size, cells int, background, line [3]float64) *image.RGBA {
	dc := gg.NewContext(size, size)
	defer dc.Close()

	dc.ClearWithColor(gg.RGB(background[0], background[1], background[2]))

	dc.SetRGB(line[0], line[1], line[2])
	dc.SetLineWidth(float64(size) / 64)
	step := float64(size) / float64(cells)
	for i := 0; i <= cells; i++ {
		p := float64(i) * step
		dc.DrawLine(p, 0, p, float64(size))
		dc.DrawLine(0, p, float64(size), p)
	}
	_ = dc.Stroke()

	// Center marker so rotation is visible.
	dc.DrawCircle(float64(size)/2, float64(size)/2, step/4)
	_ = dc.Fill()

	return ToRGBA(dc.Image())
}

// Radial draws a disc texture fading from inner at the center to outer at
// the rim, used on the panorama floor and ceiling.
func Radial(size int, inner, outer [3]float64) *image.RGBA {
	dc := gg.NewContext(size, size)
	defer dc.Close()

	c := float64(size) / 2
	dc.ClearWithColor(gg.RGB(outer[0], outer[1], outer[2]))
	brush := gg.NewRadialGradientBrush(c, c, 0, c).
		AddColorStop(0, gg.RGB(inner[0], inner[1], inner[2])).
		AddColorStop(1, gg.RGB(outer[0], outer[1], outer[2]))
	dc.SetFillBrush(brush)
	dc.DrawCircle(c, c, c)
	_ = dc.Fill()

	return ToRGBA(dc.Image())
}
