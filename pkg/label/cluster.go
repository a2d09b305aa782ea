package label

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Cluster groups events that land within MinGapPx of each other in pixel
// space. The gap test compares against the last-added member, so a cluster
// may span more than MinGapPx in total if events arrive in tight sub-gaps.
//
// Every event is assigned to exactly one cluster; nothing is dropped here.
// Clusters whose composed text is empty (for example when all members are
// hidden) are removed from the result and produce no draw output.
func Cluster(events []EventEntry, vp Viewport, opts LayoutOptions) []ClusteredLabel {
	opts = opts.withDefaults()
	if len(events) == 0 {
		return nil
	}

	// One batch transform call for the whole coordinate array.
	times := make([]float64, len(events))
	for i, e := range events {
		times[i] = e.Time
	}
	pixels := vp.TransformX(times)

	// Stable sort by pixel position; ties keep original input order.
	order := make([]int, len(events))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return pixels[order[a]] < pixels[order[b]]
	})

	var groups [][]int
	var cur []int
	for _, idx := range order {
		if len(cur) > 0 && pixels[idx]-pixels[cur[len(cur)-1]] > opts.MinGapPx {
			groups = append(groups, cur)
			cur = nil
		}
		cur = append(cur, idx)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}

	clusters := make([]ClusteredLabel, 0, len(groups))
	for _, g := range groups {
		cl := buildCluster(events, pixels, g, opts)
		if cl.DisplayText == "" {
			continue
		}
		clusters = append(clusters, cl)
	}
	return clusters
}

func buildCluster(events []EventEntry, pixels []float64, group []int, opts LayoutOptions) ClusteredLabel {
	members := make([]EventEntry, 0, len(group))
	var timeSum, pixelSum float64
	pinned := false
	maxPriority := 0
	for _, idx := range group {
		e := events[idx]
		members = append(members, e)
		timeSum += e.Time
		pixelSum += pixels[idx]
		if e.Pinned {
			pinned = true
		}
		if e.Priority > maxPriority {
			maxPriority = e.Priority
		}
	}

	// Representative category comes from the first member holding the
	// maximum priority, in member order.
	category := ""
	for _, m := range members {
		if m.Priority == maxPriority {
			category = m.Category
			break
		}
	}

	cl := ClusteredLabel{
		DataX:       timeSum / float64(len(group)),
		PixelX:      pixelSum / float64(len(group)),
		Members:     members,
		DisplayText: composeText(members, opts),
		Style:       resolveStyle(members, opts.Policy),
		Pinned:      pinned,
		MaxPriority: maxPriority,
		Category:    category,
	}
	applyEmphasis(&cl, opts)
	return cl
}

// composeText decides what text a cluster shows. Candidates are the visible
// members ordered pinned-first, then by descending priority, then by member
// order (stable).
func composeText(members []EventEntry, opts LayoutOptions) string {
	candidates := make([]EventEntry, 0, len(members))
	for _, m := range members {
		if !m.Style.Hidden {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	ordered := make([]EventEntry, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Pinned != ordered[j].Pinned {
			return ordered[i].Pinned
		}
		return ordered[i].Priority > ordered[j].Priority
	})

	if opts.CompactCounts || opts.MaxLabelsPerCluster <= 0 {
		var pinnedTexts []string
		for _, m := range ordered {
			if m.Pinned {
				pinnedTexts = append(pinnedTexts, displayText(m, opts))
			}
		}
		if len(pinnedTexts) == 0 {
			return strconv.Itoa(len(candidates))
		}
		s := strings.Join(pinnedTexts, opts.Separator)
		if rest := len(candidates) - len(pinnedTexts); rest > 0 {
			s += fmt.Sprintf(" (+%d)", rest)
		}
		return s
	}

	shown := ordered
	if len(shown) > opts.MaxLabelsPerCluster {
		shown = shown[:opts.MaxLabelsPerCluster]
	}
	texts := make([]string, 0, len(shown))
	for _, m := range shown {
		texts = append(texts, displayText(m, opts))
	}
	s := strings.Join(texts, opts.Separator)
	if rem := len(ordered) - len(shown); rem > 0 {
		s += fmt.Sprintf(" (+%d)", rem)
	}
	return s
}

func displayText(m EventEntry, opts LayoutOptions) string {
	if opts.NumberingOnly && m.Index >= 0 {
		return strconv.Itoa(m.Index)
	}
	if m.Style.TextOverride != "" {
		return m.Style.TextOverride
	}
	return m.Text
}

// resolveStyle applies the active style-resolution policy across a cluster's
// members. Ties in PolicyMostCommon break by first-encountered value in
// member order, which is deterministic because member order is the stable
// pixel-sort order of construction.
func resolveStyle(members []EventEntry, policy StylePolicy) StyleOverrides {
	if len(members) == 0 {
		return StyleOverrides{}
	}
	switch policy {
	case PolicyFirst:
		return members[0].Style
	case PolicyPriority:
		best := members[0]
		for _, m := range members[1:] {
			if m.Priority > best.Priority {
				best = m
			}
		}
		return best.Style
	case PolicyBlendColor:
		out := members[0].Style
		var sum Color
		n := 0
		for _, m := range members {
			if m.Style.Color == nil || !validColor(*m.Style.Color) {
				continue
			}
			c := *m.Style.Color
			sum.R += c.R
			sum.G += c.G
			sum.B += c.B
			sum.A += c.A
			n++
		}
		if n > 0 {
			avg := Color{R: sum.R / float64(n), G: sum.G / float64(n), B: sum.B / float64(n), A: sum.A / float64(n)}
			out.Color = &avg
		}
		return out
	case PolicyMostCommon:
		return mostCommonStyle(members)
	default:
		return members[0].Style
	}
}

func validColor(c Color) bool {
	for _, v := range []float64{c.R, c.G, c.B, c.A} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

func mostCommonStyle(members []EventEntry) StyleOverrides {
	var out StyleOverrides
	if v, ok := mostCommon(collect(members, func(s StyleOverrides) *string { return s.FontFamily })); ok {
		out.FontFamily = &v
	}
	if v, ok := mostCommon(collect(members, func(s StyleOverrides) *float64 { return s.FontSize })); ok {
		out.FontSize = &v
	}
	if v, ok := mostCommon(collect(members, func(s StyleOverrides) *FontWeight { return s.Weight })); ok {
		out.Weight = &v
	}
	if v, ok := mostCommon(collect(members, func(s StyleOverrides) *bool { return s.Italic })); ok {
		out.Italic = &v
	}
	if v, ok := mostCommon(collect(members, func(s StyleOverrides) *Color { return s.Color })); ok {
		out.Color = &v
	}
	if v, ok := mostCommon(collect(members, func(s StyleOverrides) *float64 { return s.Alpha })); ok {
		out.Alpha = &v
	}
	if v, ok := mostCommon(collect(members, func(s StyleOverrides) *float64 { return s.Rotation })); ok {
		out.Rotation = &v
	}
	if v, ok := mostCommon(collect(members, func(s StyleOverrides) *string { return s.Align })); ok {
		out.Align = &v
	}
	if v, ok := mostCommon(collect(members, func(s StyleOverrides) *BoxStyle { return s.Box })); ok {
		out.Box = &v
	}
	return out
}

func collect[T comparable](members []EventEntry, get func(StyleOverrides) *T) []T {
	var vals []T
	for _, m := range members {
		if p := get(m.Style); p != nil {
			vals = append(vals, *p)
		}
	}
	return vals
}

// mostCommon returns the most frequent value; equal counts resolve to the
// value encountered first.
func mostCommon[T comparable](vals []T) (T, bool) {
	var zero T
	if len(vals) == 0 {
		return zero, false
	}
	counts := make(map[T]int, len(vals))
	var order []T
	for _, v := range vals {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best, true
}

// applyEmphasis applies the category palette and priority styling after
// policy resolution. Priority 0 clusters are untouched by the size/weight
// step.
func applyEmphasis(cl *ClusteredLabel, opts LayoutOptions) {
	if cl.Category != "" && cl.Style.Color == nil {
		if c, ok := CategoryColor(cl.Category); ok {
			cl.Style.Color = &c
		}
	}

	base := opts.Font.Size
	if cl.Style.FontSize != nil {
		base = *cl.Style.FontSize
	}
	switch {
	case cl.MaxPriority >= 3:
		w := WeightBold
		sz := base * 1.3
		cl.Style.Weight = &w
		cl.Style.FontSize = &sz
	case cl.MaxPriority >= 1:
		w := WeightSemiBold
		sz := base * 1.15
		cl.Style.Weight = &w
		cl.Style.FontSize = &sz
	}
}
