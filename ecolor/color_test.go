package ecolor

import (
	"math"
	"testing"
)

func TestHueSatToRGB(t *testing.T) {
	tests := []struct {
		hue, sat float64
		want     RGB
	}{
		{0, 100, RGB{255, 0, 0}},
		{12, 100, RGB{255, 51, 0}},
		{30, 100, RGB{255, 128, 0}},
		{60, 100, RGB{255, 255, 0}},
		{60, 50, RGB{255, 255, 128}},
		{119.999, 50, RGB{128, 255, 128}},
		{120, 50, RGB{128, 255, 128}},
		{180, 100, RGB{0, 255, 255}},
		{240, 100, RGB{0, 0, 255}},
		{300, 100, RGB{255, 0, 255}},
		{360, 100, RGB{255, 0, 0}},
		{0, 20, RGB{255, 204, 204}},
		{200, 0, RGB{255, 255, 255}},
		// near-red snaps to pure red
		{5, 100, RGB{255, 0, 0}},
		{355, 100, RGB{255, 0, 0}},
	}

	for _, tt := range tests {
		got, ok := HueSatToRGB(tt.hue, tt.sat)
		if !ok {
			t.Errorf("HueSatToRGB(%v, %v) ok = false", tt.hue, tt.sat)
			continue
		}
		if got != tt.want {
			t.Errorf("HueSatToRGB(%v, %v) = %+v, want %+v", tt.hue, tt.sat, got, tt.want)
		}
	}
}

func TestHueSatToRGBRedClamp(t *testing.T) {
	for hue := 0; hue < 360; hue++ {
		for sat := 0; sat <= 100; sat++ {
			c, ok := HueSatToRGB(float64(hue), float64(sat))
			if !ok {
				t.Fatalf("HueSatToRGB(%d, %d) ok = false", hue, sat)
			}
			if c.R == 255 && (c.G != 0 || c.B != 0) && c.G <= redClampThreshold && c.B <= redClampThreshold {
				t.Errorf("HueSatToRGB(%d, %d) = %+v, want green and blue clamped", hue, sat, c)
			}
		}
	}
}

func TestHueSatToRGBNoColor(t *testing.T) {
	for _, hue := range []float64{-10, -0.5, math.NaN(), math.Inf(1)} {
		if c, ok := HueSatToRGB(hue, 50); ok {
			t.Errorf("HueSatToRGB(%v, 50) = %+v, want ok = false", hue, c)
		}
	}
}

func TestSector(t *testing.T) {
	tests := []struct {
		hue  float64
		want int
		frac float64
	}{
		{0, 0, 0},
		{59.999, 0, 0.99998},
		{60, 1, 0},
		{119.999, 1, 0.99998},
		{120, 2, 0},
		{180, 3, 0},
		{240, 4, 0},
		{300, 5, 0},
		{359.999, 5, 0.99998},
		{360, 0, 0},
		{390, 0, 0.5},
	}

	for _, tt := range tests {
		got, frac, ok := sector(tt.hue)
		if !ok {
			t.Errorf("sector(%v) ok = false", tt.hue)
			continue
		}
		if got != tt.want {
			t.Errorf("sector(%v) = %d, want %d", tt.hue, got, tt.want)
		}
		if math.Abs(frac-tt.frac) > 1e-4 {
			t.Errorf("sector(%v) fraction = %v, want %v", tt.hue, frac, tt.frac)
		}
	}

	for _, hue := range []float64{-0.001, -60, math.NaN(), math.Inf(-1)} {
		if _, _, ok := sector(hue); ok {
			t.Errorf("sector(%v) ok = true", hue)
		}
	}
}
