package layout

import "testing"

func baseInput() *Input {
	return &Input{
		Width:      800,
		Height:     600,
		Margins:    Margins{Left: 160},
		TopologyID: "containers",
		TopologyOptions: map[string]string{
			"pseudo": "show",
		},
		Nodes: []NodeSpec{
			{ID: "a", Adjacency: []string{"b"}},
			{ID: "b"},
		},
	}
}

func TestMergeIdentity(t *testing.T) {
	prev := baseInput()
	next := baseInput() // deep-equal, different references

	if Merge(prev, next) != prev {
		t.Error("Merge of deep-equal inputs must return the previous reference")
	}
}

func TestMergePreservesUnchangedSubstructure(t *testing.T) {
	prev := baseInput()
	next := baseInput()
	next.Width = 1024 // only the width changed

	merged := Merge(prev, next)
	if merged == prev {
		t.Fatal("Merge must return a new input when a field changed")
	}
	if merged.Width != 1024 {
		t.Errorf("width = %v, want 1024", merged.Width)
	}
	if &merged.Nodes[0] != &prev.Nodes[0] {
		t.Error("unchanged nodes projection must keep the previous reference")
	}
	if len(merged.TopologyOptions) != 1 {
		t.Fatal("topology options lost")
	}
	// Map identity: mutating through prev must be visible through merged.
	prev.TopologyOptions["probe"] = "x"
	if _, ok := merged.TopologyOptions["probe"]; !ok {
		t.Error("unchanged topology options must keep the previous reference")
	}
}

func TestMergeChanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"Width", func(in *Input) { in.Width = 999 }},
		{"Height", func(in *Input) { in.Height = 999 }},
		{"Margins", func(in *Input) { in.Margins.Left = 0 }},
		{"TopologyID", func(in *Input) { in.TopologyID = "hosts" }},
		{"ForceRelayout", func(in *Input) { in.ForceRelayout = true }},
		{"OptionValue", func(in *Input) { in.TopologyOptions["pseudo"] = "hide" }},
		{"OptionAdded", func(in *Input) { in.TopologyOptions["extra"] = "1" }},
		{"NodeAdded", func(in *Input) { in.Nodes = append(in.Nodes, NodeSpec{ID: "c"}) }},
		{"NodeRemoved", func(in *Input) { in.Nodes = in.Nodes[:1] }},
		{"AdjacencyChanged", func(in *Input) { in.Nodes[0].Adjacency = []string{"c"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := baseInput()
			next := baseInput()
			tt.mutate(next)

			if Merge(prev, next) == prev {
				t.Error("Merge must not return the previous reference after a change")
			}
		})
	}
}

func TestMergeNilPrevious(t *testing.T) {
	next := baseInput()
	if Merge(nil, next) != next {
		t.Error("Merge(nil, next) must return next")
	}
}

func TestMergeNilAndEmptyOptionsEqual(t *testing.T) {
	prev := baseInput()
	prev.TopologyOptions = nil
	next := baseInput()
	next.TopologyOptions = map[string]string{}

	if Merge(prev, next) != prev {
		t.Error("nil and empty topology options must compare equal")
	}
}
