package label

import (
	"reflect"
	"testing"
)

func identityViewport() Viewport {
	return Viewport{
		TransformX: func(times []float64) []float64 {
			out := make([]float64, len(times))
			copy(out, times)
			return out
		},
		Left: 0, Right: 1000, Top: 0, Bottom: 400,
		DPI: 96,
	}
}

func TestClusterChainedGaps(t *testing.T) {
	tests := []struct {
		name      string
		times     []float64
		minGap    float64
		wantSizes []int
	}{
		{
			name:      "empty",
			times:     nil,
			minGap:    24,
			wantSizes: nil,
		},
		{
			name:      "single event",
			times:     []float64{100},
			minGap:    24,
			wantSizes: []int{1},
		},
		{
			name:      "two far apart",
			times:     []float64{100, 200},
			minGap:    24,
			wantSizes: []int{1, 1},
		},
		{
			name: "chained cluster spans more than the gap",
			// each neighbor within 24px, total span 80px
			times:     []float64{100, 120, 140, 160, 180},
			minGap:    24,
			wantSizes: []int{5},
		},
		{
			name:      "chain broken by one wide gap",
			times:     []float64{100, 120, 200, 220},
			minGap:    24,
			wantSizes: []int{2, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := make([]EventEntry, len(tt.times))
			for i, ts := range tt.times {
				events[i] = EventEntry{Time: ts, Text: "e", Index: i}
			}
			clusters := Cluster(events, identityViewport(), LayoutOptions{MinGapPx: tt.minGap, MaxLabelsPerCluster: 10})
			if len(clusters) != len(tt.wantSizes) {
				t.Fatalf("expected %d clusters, got %d", len(tt.wantSizes), len(clusters))
			}
			for i, want := range tt.wantSizes {
				if len(clusters[i].Members) != want {
					t.Errorf("cluster %d: expected %d members, got %d", i, want, len(clusters[i].Members))
				}
			}
		})
	}
}

func TestClusterDeterminism(t *testing.T) {
	events := []EventEntry{
		{Time: 10, Text: "a", Index: 0},
		{Time: 10, Text: "b", Index: 1}, // tie in pixel space, input order decides
		{Time: 12, Text: "c", Index: 2},
		{Time: 500, Text: "d", Index: 3},
		{Time: 505, Text: "e", Index: 4},
	}
	opts := LayoutOptions{MaxLabelsPerCluster: 10}
	first := Cluster(events, identityViewport(), opts)
	second := Cluster(events, identityViewport(), opts)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("clustering is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(first))
	}
	// Tie at pixel 10 must preserve input order.
	if first[0].Members[0].Text != "a" || first[0].Members[1].Text != "b" {
		t.Errorf("tie broken out of input order: %+v", first[0].Members)
	}
}

func TestClusterNoSilentDrop(t *testing.T) {
	events := make([]EventEntry, 60)
	for i := range events {
		events[i] = EventEntry{Time: float64(i * 7), Text: "e", Index: i}
	}
	clusters := Cluster(events, identityViewport(), LayoutOptions{MaxLabelsPerCluster: 3})
	total := 0
	for _, cl := range clusters {
		total += len(cl.Members)
	}
	if total != len(events) {
		t.Errorf("expected %d events across clusters, got %d", len(events), total)
	}
}

func TestClusterMeanAnchors(t *testing.T) {
	events := []EventEntry{
		{Time: 10, Text: "a"},
		{Time: 20, Text: "b"},
	}
	clusters := Cluster(events, identityViewport(), LayoutOptions{MaxLabelsPerCluster: 10})
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	if clusters[0].DataX != 15 || clusters[0].PixelX != 15 {
		t.Errorf("expected mean anchors (15, 15), got (%v, %v)", clusters[0].DataX, clusters[0].PixelX)
	}
}

func TestClusterAggregates(t *testing.T) {
	events := []EventEntry{
		{Time: 10, Text: "a", Priority: 1, Category: "drug"},
		{Time: 12, Text: "b", Priority: 4, Category: "stimulus", Pinned: true},
		{Time: 14, Text: "c", Priority: 2, Category: "response"},
	}
	clusters := Cluster(events, identityViewport(), LayoutOptions{MaxLabelsPerCluster: 10})
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	cl := clusters[0]
	if !cl.Pinned {
		t.Error("cluster with a pinned member must be pinned")
	}
	if cl.MaxPriority != 4 {
		t.Errorf("expected max priority 4, got %d", cl.MaxPriority)
	}
	if cl.Category != "stimulus" {
		t.Errorf("expected category of highest-priority member, got %q", cl.Category)
	}
}

func TestClusterAllHiddenDropped(t *testing.T) {
	events := []EventEntry{
		{Time: 10, Text: "a", Style: StyleOverrides{Hidden: true}},
		{Time: 12, Text: "b", Style: StyleOverrides{Hidden: true}},
		{Time: 500, Text: "c"},
	}
	clusters := Cluster(events, identityViewport(), LayoutOptions{MaxLabelsPerCluster: 10})
	if len(clusters) != 1 {
		t.Fatalf("expected hidden-only cluster to be dropped, got %d clusters", len(clusters))
	}
	if clusters[0].DisplayText != "c" {
		t.Errorf("expected surviving cluster %q, got %q", "c", clusters[0].DisplayText)
	}
}

func TestComposeText(t *testing.T) {
	mk := func(text string, pinned bool, priority int) EventEntry {
		return EventEntry{Text: text, Pinned: pinned, Priority: priority, Index: -1}
	}
	tests := []struct {
		name    string
		members []EventEntry
		opts    LayoutOptions
		want    string
	}{
		{
			name:    "pinned first then priority",
			members: []EventEntry{mk("low", false, 0), mk("high", false, 5), mk("pin", true, 0)},
			opts:    LayoutOptions{MaxLabelsPerCluster: 3, Separator: " | "},
			want:    "pin | high | low",
		},
		{
			name:    "remainder suffix",
			members: []EventEntry{mk("a", false, 0), mk("b", false, 0), mk("c", false, 0)},
			opts:    LayoutOptions{MaxLabelsPerCluster: 2, Separator: " | "},
			want:    "a | b (+1)",
		},
		{
			name:    "compact with pinned",
			members: []EventEntry{mk("pin", true, 0), mk("a", false, 0), mk("b", false, 0)},
			opts:    LayoutOptions{CompactCounts: true, Separator: " | "},
			want:    "pin (+2)",
		},
		{
			name:    "compact without pinned is a bare count",
			members: []EventEntry{mk("a", false, 0), mk("b", false, 0), mk("c", false, 0)},
			opts:    LayoutOptions{CompactCounts: true, Separator: " | "},
			want:    "3",
		},
		{
			name:    "max labels zero behaves like compact",
			members: []EventEntry{mk("a", false, 0), mk("b", false, 0)},
			opts:    LayoutOptions{MaxLabelsPerCluster: 0, Separator: " | "},
			want:    "2",
		},
		{
			name: "hidden members excluded",
			members: []EventEntry{
				{Text: "shown", Index: -1},
				{Text: "hidden", Style: StyleOverrides{Hidden: true}, Index: -1},
			},
			opts: LayoutOptions{MaxLabelsPerCluster: 5, Separator: " | "},
			want: "shown",
		},
		{
			name: "text override wins",
			members: []EventEntry{
				{Text: "orig", Style: StyleOverrides{TextOverride: "replaced"}, Index: -1},
			},
			opts: LayoutOptions{MaxLabelsPerCluster: 5, Separator: " | "},
			want: "replaced",
		},
		{
			name:    "numbering only uses stable indices",
			members: []EventEntry{{Text: "a", Index: 7}, {Text: "b", Index: 8}},
			opts:    LayoutOptions{MaxLabelsPerCluster: 5, Separator: " | ", NumberingOnly: true},
			want:    "7 | 8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := composeText(tt.members, tt.opts)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
