package label

import (
	"sort"
	"testing"
)

func TestSelectMaxWeightOptimal(t *testing.T) {
	tests := []struct {
		name string
		ivs  []interval
		want []int
	}{
		{
			name: "empty",
			ivs:  nil,
			want: nil,
		},
		{
			name: "single",
			ivs:  []interval{{start: 0, end: 10, weight: 1, cluster: 0}},
			want: []int{0},
		},
		{
			name: "greedy-by-weight would pick the wrong set",
			// A=[0,10] w=5, B=[5,15] w=8, C=[12,20] w=5. B overlaps both
			// neighbors, so greedy-by-weight takes B alone for 8; the DP
			// finds {A, C} with 10.
			ivs: []interval{
				{start: 0, end: 10, weight: 5, cluster: 0},
				{start: 5, end: 15, weight: 8, cluster: 1},
				{start: 12, end: 20, weight: 5, cluster: 2},
			},
			want: []int{0, 2},
		},
		{
			name: "heavy middle wins when compatible with a neighbor",
			// A=[0,10] w=5, B=[5,15] w=8, C=[16,20] w=5: B and C are
			// compatible, so {B, C} with 13 beats {A, C} with 10.
			ivs: []interval{
				{start: 0, end: 10, weight: 5, cluster: 0},
				{start: 5, end: 15, weight: 8, cluster: 1},
				{start: 16, end: 20, weight: 5, cluster: 2},
			},
			want: []int{1, 2},
		},
		{
			name: "touching intervals do not overlap",
			ivs: []interval{
				{start: 0, end: 10, weight: 1, cluster: 0},
				{start: 10, end: 20, weight: 1, cluster: 1},
			},
			want: []int{0, 1},
		},
		{
			name: "all mutually overlapping keeps the heaviest",
			ivs: []interval{
				{start: 0, end: 30, weight: 2, cluster: 0},
				{start: 5, end: 25, weight: 9, cluster: 1},
				{start: 10, end: 20, weight: 4, cluster: 2},
			},
			want: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectMaxWeight(tt.ivs)
			sort.Ints(got)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestResolveCrowdingPinnedAlwaysVisible(t *testing.T) {
	// One pinned, priority-0 cluster at x=10 against 50 tightly packed
	// high-priority unpinned clusters elsewhere.
	clusters := []ClusteredLabel{{PixelX: 10, Pinned: true, Members: make([]EventEntry, 1)}}
	widths := []float64{40}
	for i := 0; i < 50; i++ {
		clusters = append(clusters, ClusteredLabel{
			PixelX:      500 + float64(i)*5,
			MaxPriority: 9,
			Members:     make([]EventEntry, 1),
		})
		widths = append(widths, 40)
	}

	visible := resolveCrowding(clusters, widths)
	found := false
	for _, i := range visible {
		if i == 0 {
			found = true
		}
	}
	if !found {
		t.Error("pinned cluster must always survive crowding resolution")
	}
}

func TestResolveCrowdingOptionalOverlappingPinnedDropped(t *testing.T) {
	clusters := []ClusteredLabel{
		{PixelX: 100, Pinned: true, Members: make([]EventEntry, 1)},
		{PixelX: 110, MaxPriority: 9, Members: make([]EventEntry, 3)}, // overlaps pinned
		{PixelX: 400, Members: make([]EventEntry, 1)},
	}
	widths := []float64{60, 60, 60}
	visible := resolveCrowding(clusters, widths)
	want := []int{0, 2}
	if len(visible) != len(want) {
		t.Fatalf("expected visible %v, got %v", want, visible)
	}
	for i := range want {
		if visible[i] != want[i] {
			t.Fatalf("expected visible %v, got %v", want, visible)
		}
	}
}

func TestResolveCrowdingWeights(t *testing.T) {
	// Two overlapping optional clusters: weight = max(priority,0) + max(members,1).
	// Cluster 0: priority 1, 1 member  -> 2.
	// Cluster 1: priority 0, 4 members -> 4. The heavier one wins.
	clusters := []ClusteredLabel{
		{PixelX: 100, MaxPriority: 1, Members: make([]EventEntry, 1)},
		{PixelX: 105, Members: make([]EventEntry, 4)},
	}
	widths := []float64{50, 50}
	visible := resolveCrowding(clusters, widths)
	if len(visible) != 1 || visible[0] != 1 {
		t.Errorf("expected member count to outweigh priority, got %v", visible)
	}
}

func TestAssignLanesBestFitSpreading(t *testing.T) {
	// Same-width labels at strictly increasing positions with gaps smaller
	// than the label width: the first laneCount labels must each land in a
	// fresh lane before any lane receives a second label.
	const lanes = 3
	const width = 50.0
	var lefts, widths []float64
	for i := 0; i < 6; i++ {
		lefts = append(lefts, float64(i)*30)
		widths = append(widths, width)
	}
	got := assignLanes(lefts, widths, lanes)

	seen := make(map[int]bool)
	for i := 0; i < lanes; i++ {
		if seen[got[i]] {
			t.Fatalf("lane %d reused before all lanes were filled: %v", got[i], got)
		}
		seen[got[i]] = true
	}
	if len(seen) != lanes {
		t.Fatalf("expected %d distinct lanes among first %d labels, got %v", lanes, lanes, got)
	}
}

func TestAssignLanesOverflowAcceptsOverlap(t *testing.T) {
	// One lane, two overlapping labels: the second is still assigned.
	got := assignLanes([]float64{0, 10}, []float64{50, 50}, 1)
	if len(got) != 2 || got[0] != 0 || got[1] != 0 {
		t.Errorf("expected both labels in lane 0, got %v", got)
	}
}

func TestPlaceLabel(t *testing.T) {
	tests := []struct {
		name          string
		pixelX, width float64
		left, right   float64
		want          float64
	}{
		{name: "nudged right", pixelX: 100, width: 40, left: 0, right: 1000, want: 112},
		{name: "shrunk at right edge", pixelX: 980, width: 40, left: 0, right: 1000, want: 960},
		{name: "clamped at left edge", pixelX: 0, width: 2000, left: 0, right: 1000, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := placeLabel(tt.pixelX, tt.width, tt.left, tt.right)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
