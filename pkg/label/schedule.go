package label

import (
	"math"
	"sort"
)

const (
	// crowdingPad is the fixed padding added around each label's required
	// pixel interval during collision resolution.
	crowdingPad = 8.0
	// laneBuffer keeps a lane occupied this many pixels past a label's
	// right edge.
	laneBuffer = 12.0
	// preferGap nudges a label this many pixels right of its event position.
	preferGap = 12.0
)

type interval struct {
	start, end float64
	weight     float64
	cluster    int
}

func overlaps(a, b interval) bool {
	return a.start < b.end && b.start < a.end
}

// resolveCrowding selects which clusters survive horizontal-mode collision
// resolution. Pinned clusters are always kept. Optional clusters overlapping
// a pinned cluster are discarded, and a maximum-weight pairwise-non-overlapping
// subset of the remainder is chosen by weighted interval scheduling. The
// returned indices are ascending, i.e. in cluster (pixel) order.
func resolveCrowding(clusters []ClusteredLabel, widths []float64) []int {
	ivs := make([]interval, len(clusters))
	for i, cl := range clusters {
		hw := widths[i] / 2
		ivs[i] = interval{
			start:   cl.PixelX - hw - crowdingPad,
			end:     cl.PixelX + hw + crowdingPad,
			cluster: i,
		}
	}

	var pinned, optional []interval
	for i, cl := range clusters {
		if cl.Pinned {
			pinned = append(pinned, ivs[i])
			continue
		}
		iv := ivs[i]
		iv.weight = float64(maxInt(cl.MaxPriority, 0) + maxInt(len(cl.Members), 1))
		optional = append(optional, iv)
	}

	free := optional[:0:0]
	for _, o := range optional {
		hit := false
		for _, p := range pinned {
			if overlaps(o, p) {
				hit = true
				break
			}
		}
		if !hit {
			free = append(free, o)
		}
	}

	selected := selectMaxWeight(free)
	visible := make([]int, 0, len(pinned)+len(selected))
	for _, p := range pinned {
		visible = append(visible, p.cluster)
	}
	visible = append(visible, selected...)
	sort.Ints(visible)
	return visible
}

// selectMaxWeight is classic weighted interval scheduling: sort by interval
// end, binary-search each interval's rightmost non-overlapping predecessor,
// then a linear DP with reconstruction. O(n log n).
func selectMaxWeight(ivs []interval) []int {
	n := len(ivs)
	if n == 0 {
		return nil
	}
	sorted := make([]interval, n)
	copy(sorted, ivs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].end < sorted[j].end })

	ends := make([]float64, n)
	for i, iv := range sorted {
		ends[i] = iv.end
	}
	// p[i] is the index of the last interval ending at or before sorted[i]
	// starts, or -1.
	p := make([]int, n)
	for i := range sorted {
		j := sort.Search(n, func(k int) bool { return ends[k] > sorted[i].start })
		if j-1 >= i {
			j = i
		}
		p[i] = j - 1
	}

	dp := make([]float64, n+1)
	take := make([]bool, n)
	for i := 1; i <= n; i++ {
		include := sorted[i-1].weight + dp[p[i-1]+1]
		exclude := dp[i-1]
		if include > exclude {
			dp[i] = include
			take[i-1] = true
		} else {
			dp[i] = exclude
		}
	}

	var selected []int
	for i := n; i > 0; {
		if take[i-1] {
			selected = append(selected, sorted[i-1].cluster)
			i = p[i-1] + 1
		} else {
			i--
		}
	}
	return selected
}

// assignLanes places labels (given by left edge and width, in any order) into
// lanes with a best-fit rule: among lanes already free at the label's left
// edge, the lane with the most slack wins, spreading labels across lanes
// instead of piling them into lane 0. When no lane is free the label goes to
// the lane freeing up soonest; an overlap beats a dropped label.
func assignLanes(lefts, widths []float64, lanes int) []int {
	occupied := make([]float64, lanes)
	for i := range occupied {
		occupied[i] = math.Inf(-1)
	}

	order := make([]int, len(lefts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return lefts[order[a]] < lefts[order[b]] })

	out := make([]int, len(lefts))
	for _, idx := range order {
		best := -1
		for l := 0; l < lanes; l++ {
			if occupied[l] <= lefts[idx] && (best == -1 || occupied[l] < occupied[best]) {
				best = l
			}
		}
		if best == -1 {
			best = 0
			for l := 1; l < lanes; l++ {
				if occupied[l] < occupied[best] {
					best = l
				}
			}
		}
		out[idx] = best
		occupied[best] = lefts[idx] + widths[idx] + laneBuffer
	}
	return out
}

// placeLabel computes the horizontal start of a selected label: nudged right
// of the event position by preferGap, shrunk if it would overflow the right
// edge, then clamped to the left edge, in that priority order.
func placeLabel(pixelX, width, left, right float64) float64 {
	x := pixelX + preferGap
	if x+width > right {
		x = right - width
	}
	if x < left {
		x = left
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
