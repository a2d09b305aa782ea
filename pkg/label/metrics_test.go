package label

import (
	"errors"
	"testing"
)

type countingMeasurer struct {
	calls int
	err   error
	panic bool
}

func (m *countingMeasurer) MeasureText(text string, font FontSpec) (float64, float64, error) {
	m.calls++
	if m.panic {
		panic("no rendering surface")
	}
	if m.err != nil {
		return 0, 0, m.err
	}
	return float64(len(text)) * 7, 12, nil
}

func TestMetricsCacheMemoizes(t *testing.T) {
	m := &countingMeasurer{}
	cache := NewMetricsCache()
	f := FontSpec{Family: "Arial", Size: 10}

	w1, h1 := cache.Get("hello", f, 96, m)
	w2, h2 := cache.Get("hello", f, 96, m)
	if m.calls != 1 {
		t.Errorf("expected exactly one measurement call, got %d", m.calls)
	}
	if w1 != w2 || h1 != h2 || w1 == 0 {
		t.Errorf("expected identical cached sizes, got (%v,%v) then (%v,%v)", w1, h1, w2, h2)
	}
}

func TestMetricsCacheKeyedByFontAndDPI(t *testing.T) {
	m := &countingMeasurer{}
	cache := NewMetricsCache()

	cache.Get("x", FontSpec{Size: 10}, 96, m)
	cache.Get("x", FontSpec{Size: 12}, 96, m)
	cache.Get("x", FontSpec{Size: 10}, 144, m)
	if m.calls != 3 {
		t.Errorf("expected distinct entries per font and dpi, got %d calls", m.calls)
	}
	if cache.Len() != 3 {
		t.Errorf("expected 3 cached entries, got %d", cache.Len())
	}
}

func TestMetricsCacheClear(t *testing.T) {
	m := &countingMeasurer{}
	cache := NewMetricsCache()
	cache.Get("x", FontSpec{Size: 10}, 96, m)
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d entries", cache.Len())
	}
	cache.Get("x", FontSpec{Size: 10}, 96, m)
	if m.calls != 2 {
		t.Errorf("expected re-measurement after Clear, got %d calls", m.calls)
	}
}

func TestMetricsCacheNilMeasurerSentinel(t *testing.T) {
	cache := NewMetricsCache()
	w, h := cache.Get("x", FontSpec{Size: 10}, 96, nil)
	if w != 0 || h != 0 {
		t.Errorf("expected (0,0) sentinel, got (%v,%v)", w, h)
	}
	if cache.Len() != 0 {
		t.Error("a not-yet-measurable result must not be cached")
	}
}

func TestMetricsCacheErrorNotCached(t *testing.T) {
	m := &countingMeasurer{err: errors.New("backend gone")}
	cache := NewMetricsCache()
	w, h := cache.Get("x", FontSpec{Size: 10}, 96, m)
	if w != 0 || h != 0 {
		t.Errorf("expected (0,0) on failure, got (%v,%v)", w, h)
	}
	if cache.Len() != 0 {
		t.Error("failed measurements must not be cached")
	}

	// A later healthy measurer call must succeed.
	m.err = nil
	w, _ = cache.Get("x", FontSpec{Size: 10}, 96, m)
	if w == 0 {
		t.Error("expected successful measurement after failure cleared")
	}
}

func TestMetricsCachePanicAbsorbed(t *testing.T) {
	m := &countingMeasurer{panic: true}
	cache := NewMetricsCache()
	w, h := cache.Get("x", FontSpec{Size: 10}, 96, m)
	if w != 0 || h != 0 {
		t.Errorf("expected (0,0) when the measurement primitive panics, got (%v,%v)", w, h)
	}
}
