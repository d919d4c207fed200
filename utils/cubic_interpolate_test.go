// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float64
		x              float64
		want           float64
	}{
		{name: "start returns y1", y0: 1, y1: 2, y2: 3, y3: 4, x: 0, want: 2},
		{name: "end returns y2", y0: 1, y1: 2, y2: 3, y3: 4, x: 1, want: 3},
		{name: "linear data stays linear", y0: 0, y1: 10, y2: 20, y3: 30, x: 0.25, want: 12.5},
		{name: "negative ramp", y0: -4, y1: -3, y2: -2, y3: -1, x: 0.5, want: -2.5},
		{name: "symmetric peak overshoots", y0: 0, y1: 1, y2: 1, y3: 0, x: 0.5, want: 1.125},
		{name: "silence", x: 0.7, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("CubicInterpolate(%v, %v, %v, %v, %v) = %v, want %v",
					tt.y0, tt.y1, tt.y2, tt.y3, tt.x, got, tt.want)
			}
		})
	}
}

// float32 and float64 instantiations agree within float32 precision.
func TestCubicInterpolate_Float32(t *testing.T) {
	t.Parallel()

	for x := 0.0; x <= 1.0; x += 0.125 {
		want := CubicInterpolate(0.1, -0.3, 0.8, 0.2, x)
		got := CubicInterpolate[float32](0.1, -0.3, 0.8, 0.2, float32(x))
		if math.Abs(float64(got)-want) > 1e-6 {
			t.Errorf("x=%v: float32 = %v, float64 = %v", x, got, want)
		}
	}
}

// Between two equal samples with flat neighbours the curve is constant.
func TestCubicInterpolate_Flat(t *testing.T) {
	t.Parallel()

	for x := 0.0; x <= 1.0; x += 0.1 {
		if got := CubicInterpolate(0.5, 0.5, 0.5, 0.5, x); math.Abs(got-0.5) > 1e-12 {
			t.Errorf("CubicInterpolate(flat, %v) = %v", x, got)
		}
	}
}

func TestLinearInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		y1, y2 float64
		x      float64
		want   float64
	}{
		{name: "start", y1: 1, y2: 3, x: 0, want: 1},
		{name: "end", y1: 1, y2: 3, x: 1, want: 3},
		{name: "quarter", y1: 0, y2: 4, x: 0.25, want: 1},
		{name: "descending", y1: 1, y2: -1, x: 0.5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := LinearInterpolate(tt.y1, tt.y2, tt.x); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("LinearInterpolate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterpolate_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	allocs := testing.AllocsPerRun(1000, func() {
		_ = CubicInterpolate(0.1, 0.2, 0.3, 0.4, 0.5)
		_ = LinearInterpolate(0.1, 0.2, 0.5)
	})
	if allocs > 0 {
		t.Errorf("interpolation allocated %v times, want 0", allocs)
	}
}

// BenchmarkCubicInterpolate upsamples a 1 kHz tone by 4x.
func BenchmarkCubicInterpolate(b *testing.B) {
	in := make([]float64, 4096)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / 44100)
	}
	out := make([]float64, 0, 4*len(in))

	b.ReportAllocs()
	for b.Loop() {
		out = out[:0]
		for i := 1; i < len(in)-2; i++ {
			for _, x := range [...]float64{0, 0.25, 0.5, 0.75} {
				out = append(out, CubicInterpolate(in[i-1], in[i], in[i+1], in[i+2], x))
			}
		}
	}
}
