package ecolor

import "math"

// RGB is an 8-bit color triplet as the device expects it
type RGB struct {
	R, G, B uint8
}

// anything this close to pure red comes out as a muddy orange on the lamps
const redClampThreshold = 25

// HueSatToRGB converts a HomeKit hue (0-360) and saturation (0-100) to RGB at full value.
// ok is false when the hue lands outside the six sectors (negative or NaN); no color should be sent.
func HueSatToRGB(hue, saturation float64) (RGB, bool) {
	sec, f, ok := sector(hue)
	if !ok {
		return RGB{}, false
	}
	s := saturation / 100

	p := 255 * (1 - s)
	q := 255 * (1 - s*f)
	t := 255 * (1 - s*(1-f))

	var r, g, b float64
	switch sec {
	case 0:
		r, g, b = 255, t, p
	case 1:
		r, g, b = q, 255, p
	case 2:
		r, g, b = p, 255, t
	case 3:
		r, g, b = p, q, 255
	case 4:
		r, g, b = t, p, 255
	default:
		r, g, b = 255, p, q
	}

	c := RGB{R: channel(r), G: channel(g), B: channel(b)}
	if c.R == 255 && c.G <= redClampThreshold && c.B <= redClampThreshold {
		c.G, c.B = 0, 0
	}
	return c, true
}

// sector returns floor(hue/60) mod 6 and the fractional part of hue/60
func sector(hue float64) (int, float64, bool) {
	h := hue / 60
	fl := math.Floor(h)
	if math.IsNaN(fl) || math.IsInf(fl, 0) || fl < 0 {
		return 0, 0, false
	}
	return int(fl) % 6, h - fl, true
}

func channel(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
