package engine

import (
	"testing"
)

func TestFloatsGolden(t *testing.T) {
	tests := []struct {
		name     string
		seed     int64
		expected []float64
	}{
		{
			name:     "seed 12345",
			seed:     12345,
			expected: []float64{0.39227252011187375, 0.8318085002247244, 0.4860479028429836, 0.26924546086229384, 0.3859783038496971},
		},
		{
			name:     "seed 0",
			seed:     0,
			expected: []float64{0.18116818764247, 0.6733320453204215, 0.054434425197541714, 0.31748342234641314, 0.25090317497961223},
		},
		{
			name:     "negative seed",
			seed:     -7,
			expected: []float64{0.7358242410700768, 0.8605941426940262, 0.31887056096456945, 0.948442789260298, 0.16827402310445905},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			floats := Floats(tt.seed, 0, len(tt.expected))
			for i := range tt.expected {
				if floats[i] != tt.expected[i] {
					t.Errorf("Float %d mismatch: got %.17f, want %.17f", i, floats[i], tt.expected[i])
				}
			}
		})
	}
}

func TestSourceNextUint32Golden(t *testing.T) {
	src := NewSource(12345)
	want := []uint32{1684797645, 3572590305, 2087559847}
	for i, w := range want {
		if got := src.NextUint32(); got != w {
			t.Errorf("NextUint32 draw %d: got %d, want %d", i, got, w)
		}
	}
	if src.Draws() != 3 {
		t.Errorf("Draws() = %d, want 3", src.Draws())
	}
}

func TestSourceNextIntGolden(t *testing.T) {
	src := NewSource(12345)
	want := []int{39, 83, 48, 26, 38, 68, 20, 34, 92, 82}
	for i, w := range want {
		if got := src.NextInt(100); got != w {
			t.Errorf("NextInt(100) draw %d: got %d, want %d", i, got, w)
		}
	}
}

func TestSourceNextIntRange(t *testing.T) {
	src := NewSource(99)
	for _, bound := range []int{1, 2, 3, 17, 25, 101, 1 << 20} {
		for i := 0; i < 200; i++ {
			v := src.NextInt(bound)
			if v < 0 || v >= bound {
				t.Fatalf("NextInt(%d) = %d, out of range", bound, v)
			}
		}
	}
}

func TestSourceNextIntPanicsOnInvalidBound(t *testing.T) {
	for _, bound := range []int{0, -1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NextInt(%d) did not panic", bound)
				}
			}()
			NewSource(1).NextInt(bound)
		}()
	}
}

func TestSourceReseedVisibleThroughHandles(t *testing.T) {
	src := NewSource(1)
	handle := src // a component's stored reference

	src.NextInt(10)
	src.NextInt(10)
	src.Reseed(12345)

	if got := handle.NextInt(100); got != 39 {
		t.Errorf("first draw after reseed = %d, want 39", got)
	}
	if handle.Seed() != 12345 {
		t.Errorf("Seed() = %d, want 12345", handle.Seed())
	}
	if handle.Reseeds() != 1 {
		t.Errorf("Reseeds() = %d, want 1", handle.Reseeds())
	}
	if handle.Draws() != 1 {
		t.Errorf("Draws() = %d, want 1", handle.Draws())
	}
}

func TestSourceReseedSameSeedRestartsSequence(t *testing.T) {
	src := NewSource(42)
	first := make([]uint32, 40)
	for i := range first {
		first[i] = src.NextUint32()
	}

	src.Reseed(42)
	src.Reseed(42)
	for i := range first {
		if got := src.NextUint32(); got != first[i] {
			t.Fatalf("draw %d after reseed: got %d, want %d", i, got, first[i])
		}
	}
}

func TestSourceMatchesFloats(t *testing.T) {
	// Crosses several 32-byte rounds.
	const n = 50
	expected := Floats(777, 0, n)
	src := NewSource(777)
	for i := 0; i < n; i++ {
		if got := src.NextFloat(); got != expected[i] {
			t.Fatalf("float %d: got %.17f, want %.17f", i, got, expected[i])
		}
	}
}

func TestFloatsCursor(t *testing.T) {
	all := Floats(5, 0, 10)
	tail := Floats(5, 8, 8)
	for i := range tail {
		if tail[i] != all[i+2] {
			t.Errorf("cursor float %d: got %.17f, want %.17f", i, tail[i], all[i+2])
		}
	}
}

func TestBytesToFloat(t *testing.T) {
	tests := []struct {
		name     string
		bytes    [4]byte
		expected float64
	}{
		{name: "all zeros", bytes: [4]byte{0, 0, 0, 0}, expected: 0.0},
		{name: "first byte half", bytes: [4]byte{128, 0, 0, 0}, expected: 0.5},
		{name: "all max values", bytes: [4]byte{255, 255, 255, 255}, expected: 1 - 1.0/4294967296},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bytesToFloat(tt.bytes); got != tt.expected {
				t.Errorf("bytesToFloat(%v) = %.17f, want %.17f", tt.bytes, got, tt.expected)
			}
		})
	}
}

func TestNewRandomSource(t *testing.T) {
	src, err := NewRandomSource()
	if err != nil {
		t.Fatalf("NewRandomSource() error = %v", err)
	}
	v := src.NextInt(6)
	if v < 0 || v >= 6 {
		t.Errorf("NextInt(6) = %d", v)
	}
}
