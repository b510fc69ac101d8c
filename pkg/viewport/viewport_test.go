package viewport

import "testing"

func TestClampScale(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"BelowMin", 0.01, MinScale},
		{"AtMin", MinScale, MinScale},
		{"InRange", 1.5, 1.5},
		{"AtMax", MaxScale, MaxScale},
		{"AboveMax", 5, MaxScale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampScale(tt.in); got != tt.want {
				t.Errorf("ClampScale(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestApplyGesture(t *testing.T) {
	c := NewController()

	c.ApplyGesture(0.5, 10, 20)
	s := c.State()
	if s.Scale != 0.5 || s.PanX != 10 || s.PanY != 20 {
		t.Errorf("state = %+v, want scale 0.5 pan (10, 20)", s)
	}
	if !s.HasZoomed {
		t.Error("gesture must set HasZoomed")
	}
}

func TestApplyGestureIgnoredWhileFocused(t *testing.T) {
	c := NewController()
	c.EnterFocus()

	c.ApplyGesture(0.5, 10, 20)
	if s := c.State(); s.HasZoomed || s.Scale != 1 {
		t.Errorf("gesture applied during focus: %+v", s)
	}
}

func TestFitScale(t *testing.T) {
	tests := []struct {
		name      string
		hasZoomed bool
		factor    float64
		wantScale float64
	}{
		{"ShrinksToFit", false, 0.4, 0.4},
		{"NeverZoomsIn", false, 1.5, 1},
		{"ExactFitUnchanged", false, 1, 1},
		{"ZeroIgnored", false, 0, 1},
		{"ManualZoomWins", true, 0.4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			if tt.hasZoomed {
				c.ApplyGesture(1, 0, 0)
			}
			c.FitScale(tt.factor)
			if got := c.State().Scale; got != tt.wantScale {
				t.Errorf("scale = %v, want %v", got, tt.wantScale)
			}
		})
	}
}

func TestSwitchTopology(t *testing.T) {
	c := NewController()
	c.ApplyGesture(0.6, 10, 20)

	c.SwitchTopology("A", "B")

	// B was never visited: defaults.
	if s := c.State(); s != DefaultState() {
		t.Errorf("state after switch = %+v, want default", s)
	}

	// A's entry holds the state active immediately before the switch.
	saved, ok := c.CachedState("A")
	if !ok {
		t.Fatal("A must be cached")
	}
	if saved.Scale != 0.6 || saved.PanX != 10 || saved.PanY != 20 || !saved.HasZoomed {
		t.Errorf("cached A = %+v", saved)
	}

	// Returning to A restores it.
	c.SwitchTopology("B", "A")
	if s := c.State(); s != saved {
		t.Errorf("state after return = %+v, want %+v", s, saved)
	}
}

func TestSwitchTopologyOverwritesCache(t *testing.T) {
	c := NewController()
	c.ApplyGesture(0.6, 10, 20)
	c.SwitchTopology("A", "B")
	c.ApplyGesture(1.8, 1, 2)
	c.SwitchTopology("B", "A")
	c.ApplyGesture(0.3, 5, 5)
	c.SwitchTopology("A", "B")

	saved, _ := c.CachedState("A")
	if saved.Scale != 0.3 {
		t.Errorf("cached A scale = %v, want latest 0.3", saved.Scale)
	}
	if s := c.State(); s.Scale != 1.8 {
		t.Errorf("restored B scale = %v, want 1.8", s.Scale)
	}
}

func TestFocusSaveRestore(t *testing.T) {
	c := NewController()
	c.ApplyGesture(0.7, 30, 40)
	before := c.State()

	c.EnterFocus()
	if !c.Focused() {
		t.Fatal("controller must report focused")
	}
	c.SetState(State{Scale: 1.2, PanX: 1, PanY: 2, HasZoomed: true})

	// Re-entering focus keeps the original snapshot.
	c.EnterFocus()

	c.ExitFocus()
	if s := c.State(); s != before {
		t.Errorf("state after exit = %+v, want %+v", s, before)
	}
	if c.Focused() {
		t.Error("controller must not report focused after exit")
	}
}

func TestExitFocusWithoutEnter(t *testing.T) {
	c := NewController()
	c.ApplyGesture(0.7, 30, 40)
	before := c.State()

	c.ExitFocus()
	if s := c.State(); s != before {
		t.Errorf("ExitFocus without EnterFocus changed state: %+v", s)
	}
}

func TestRestoreCacheClampsScale(t *testing.T) {
	c := NewController()
	c.RestoreCache(map[string]State{"A": {Scale: 99}})
	s, _ := c.CachedState("A")
	if s.Scale != MaxScale {
		t.Errorf("restored scale = %v, want clamped %v", s.Scale, MaxScale)
	}
}
