package layout

import (
	"math"
	"testing"
)

func TestNewNodeScale(t *testing.T) {
	tests := []struct {
		name      string
		nodeCount int
		width     float64
		height    float64
		wantMax   float64
	}{
		{
			// expanse=300, targetSize=100, cap=min(100, 30)=30,
			// upper = max(10, min(100, 30)) = 30
			name:      "SingleNodeSmallViewport",
			nodeCount: 1,
			width:     300,
			height:    300,
			wantMax:   30,
		},
		{
			// expanse=1000, targetSize=333.3, cap=min(100,100)=100,
			// upper = max(10, min(333.3/10, 100)) = 33.3
			name:      "HundredNodes",
			nodeCount: 100,
			width:     1000,
			height:    1200,
			wantMax:   1000.0 / 3 / 10,
		},
		{
			// many nodes drive the target below the floor
			name:      "FloorApplies",
			nodeCount: 10000,
			width:     300,
			height:    300,
			wantMax:   10,
		},
		{
			// zero nodes must not divide by zero; treated as one node
			name:      "ZeroNodes",
			nodeCount: 0,
			width:     300,
			height:    300,
			wantMax:   30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewNodeScale(tt.nodeCount, tt.width, tt.height)
			if math.Abs(s.Max()-tt.wantMax) > 1e-9 {
				t.Errorf("Max() = %v, want %v", s.Max(), tt.wantMax)
			}
		})
	}
}

func TestScaleSize(t *testing.T) {
	s := NewNodeScale(4, 300, 300)

	if got := s.Size(0); got != 0 {
		t.Errorf("Size(0) = %v, want 0 (lower bound)", got)
	}
	if got := s.Size(4); math.Abs(got-s.Max()) > 1e-9 {
		t.Errorf("Size(domain max) = %v, want %v", got, s.Max())
	}
	if got := s.Size(100); math.Abs(got-s.Max()) > 1e-9 {
		t.Errorf("Size beyond domain = %v, want clamp to %v", got, s.Max())
	}

	// Monotonically non-decreasing across the domain.
	prev := 0.0
	for c := 1.0; c <= 4; c++ {
		got := s.Size(c)
		if got < prev {
			t.Errorf("Size(%v) = %v < Size(%v) = %v, scale must be monotonic", c, got, c-1, prev)
		}
		prev = got
	}
}
