// Package pricing derives the price bounds of the full car list and maps a
// price onto the blue (cheapest) to red (priciest) gradient used per row.
package pricing

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/studiowebux/carcli/internal/types"
)

// MinMax returns the lowest and highest price in cars, or (0, 0) when empty
func MinMax(cars []types.Car) (min, max float64) {
	if len(cars) == 0 {
		return 0, 0
	}

	min, max = cars[0].Price, cars[0].Price
	for _, c := range cars[1:] {
		if c.Price < min {
			min = c.Price
		}
		if c.Price > max {
			max = c.Price
		}
	}
	return min, max
}

// RGB is an 8-bit colour. G is always 0 for gradient colours.
type RGB struct {
	R, G, B uint8
}

// String renders the colour as rgb(r, g, b)
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex renders the colour as #rrggbb
func (c RGB) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// Gradient holds the last computed price bounds
type Gradient struct {
	Min float64
	Max float64
}

// NewGradient computes bounds from the full, unfiltered car list
func NewGradient(cars []types.Car) Gradient {
	min, max := MinMax(cars)
	return Gradient{Min: min, Max: max}
}

// Degenerate reports whether every price is identical (or no bounds are known)
func (g Gradient) Degenerate() bool {
	return g.Max <= g.Min
}

// Normalize maps price into [0, 1] against the bounds.
// Prices outside the bounds are clamped; degenerate bounds yield 0.5.
func (g Gradient) Normalize(price float64) float64 {
	if g.Degenerate() {
		return 0.5
	}
	t := (price - g.Min) / (g.Max - g.Min)
	if math.IsNaN(t) {
		return 0.5
	}
	return math.Max(0, math.Min(1, t))
}

// Color returns the gradient colour for price: red = floor(255t), blue = floor(255(1-t))
func (g Gradient) Color(price float64) RGB {
	t := g.Normalize(price)
	return RGB{
		R: uint8(math.Floor(255 * t)),
		G: 0,
		B: uint8(math.Floor(255 * (1 - t))),
	}
}
