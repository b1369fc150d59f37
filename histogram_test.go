package buddhabrot

import (
	"math"
	"math/rand"
	"sync"
	"testing"
)

type event struct {
	tier Tier
	x, y int
}

func randomEvents(n, w, h int, seed int64) []event {
	rng := rand.New(rand.NewSource(seed))
	evs := make([]event, n)
	for i := range evs {
		// some events land out of range on purpose
		evs[i] = event{
			tier: Tiers[rng.Intn(NumTiers)],
			x:    rng.Intn(w+2) - 1,
			y:    rng.Intn(h+2) - 1,
		}
	}
	return evs
}

func TestHistogramsOrderIndependent(t *testing.T) {
	const w, h = 7, 5
	evs := randomEvents(20000, w, h, 42)

	seq := NewHistograms(w, h)
	for _, e := range evs {
		seq.Accumulate(e.tier, e.x, e.y)
	}

	shuffled := append([]event(nil), evs...)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	par := NewHistograms(w, h)
	var wg sync.WaitGroup
	const workers = 16
	for wid := 0; wid < workers; wid++ {
		wg.Add(1)
		go func(wid int) {
			defer wg.Done()
			for i := wid; i < len(shuffled); i += workers {
				e := shuffled[i]
				par.Accumulate(e.tier, e.x, e.y)
			}
		}(wid)
	}
	wg.Wait()

	for _, tier := range Tiers {
		if !seq.Tier(tier).Equal(par.Tier(tier)) {
			t.Errorf("tier %s: parallel histogram differs from sequential", tier)
		}
	}
}

func TestHistogramOutOfRangeIsNoop(t *testing.T) {
	h := NewHistogram(3, 2)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 2}, {100, 100}} {
		h.Increment(p[0], p[1])
	}
	if h.Total() != 0 {
		t.Fatalf("Total = %d after out-of-range increments, want 0", h.Total())
	}
	h.Increment(2, 1)
	h.Increment(2, 1)
	if got := h.Count(2, 1); got != 2 {
		t.Fatalf("Count(2,1) = %d, want 2", got)
	}
	if got := h.Counts()[1*3+2]; got != 2 {
		t.Fatalf("Counts()[5] = %d, want 2", got)
	}
	if h.Max() != 2 {
		t.Fatalf("Max = %d, want 2", h.Max())
	}
}

func TestHistogramsTiersIndependent(t *testing.T) {
	hs := NewHistograms(2, 2)
	hs.Accumulate(TierLow, 0, 0)
	hs.For(TierHigh).Increment(1, 1)
	hs.Accumulate(Tier(9), 0, 0)

	if hs.Tier(TierLow).Count(0, 0) != 1 || hs.Tier(TierLow).Total() != 1 {
		t.Errorf("low tier = %v", hs.Tier(TierLow).Counts())
	}
	if hs.Tier(TierMid).Total() != 0 {
		t.Errorf("mid tier = %v, want empty", hs.Tier(TierMid).Counts())
	}
	if hs.Tier(TierHigh).Count(1, 1) != 1 || hs.Tier(TierHigh).Total() != 1 {
		t.Errorf("high tier = %v", hs.Tier(TierHigh).Counts())
	}
}

func TestHistogramSaturates(t *testing.T) {
	h := NewHistogram(2, 1)
	h.cells[0] = math.MaxUint32 - 1
	h.cells[1] = math.MaxUint32 - 5

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Increment(0, 0)
		}()
	}
	wg.Wait()
	h.Add(1, 0, 10)

	if got := h.Count(0, 0); got != math.MaxUint32 {
		t.Errorf("Count(0,0) = %d, want %d", got, uint32(math.MaxUint32))
	}
	if got := h.Count(1, 0); got != math.MaxUint32 {
		t.Errorf("Count(1,0) = %d, want %d", got, uint32(math.MaxUint32))
	}
	if got, want := h.Total(), uint64(2*math.MaxUint32); got != want {
		t.Errorf("Total = %d, want %d", got, want)
	}
}

func TestHistogramsAccumulateN(t *testing.T) {
	hs := NewHistograms(2, 2)
	hs.AccumulateN(TierMid, 1, 0, 7)
	hs.AccumulateN(TierMid, 5, 5, 7)
	hs.For(TierMid).(BulkAccumulator).Add(1, 0, 3)
	addHits(hs.For(TierLow), 0, 1, 4)
	addHits(&recordingAccumulator{}, 0, 0, 0)

	if got := hs.Tier(TierMid).Count(1, 0); got != 10 {
		t.Errorf("mid (1,0) = %d, want 10", got)
	}
	if got := hs.Tier(TierMid).Total(); got != 10 {
		t.Errorf("mid total = %d, want 10", got)
	}
	if got := hs.Tier(TierLow).Count(0, 1); got != 4 {
		t.Errorf("low (0,1) = %d, want 4", got)
	}

	rec := &recordingAccumulator{}
	addHits(rec, 2, 3, 3)
	if len(rec.hits) != 3 || rec.hits[2] != [2]int{2, 3} {
		t.Errorf("plain accumulator hits = %v, want three at (2,3)", rec.hits)
	}
}
