package render

import (
	"image/color"
	"math"
)

// tab10 is the ten-color category palette. Series i uses tab10[i%10], the
// same colors generated code selects with 'C0'..'C9'.
var tab10 = []color.NRGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
	{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
	{R: 0xbc, G: 0xbd, B: 0x22, A: 0xff},
	{R: 0x17, G: 0xbe, B: 0xcf, A: 0xff},
}

// Color returns palette color i, wrapping around.
func Color(i int) color.NRGBA {
	n := len(tab10)
	return tab10[((i%n)+n)%n]
}

func withAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = uint8(math.Round(math.Max(0, math.Min(1, alpha)) * 0xff))
	return c
}

var (
	gridColor  = color.NRGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff}
	spineColor = color.Black
)
