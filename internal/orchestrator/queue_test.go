package orchestrator

import "testing"

func track(n string) Track {
	return Track{Encoded: n, Title: n}
}

func TestQueueAddTruncatesWithoutUnderflow(t *testing.T) {
	q := NewQueue(3)

	res := q.Add([]Track{track("a"), track("b")})
	if res.Truncated || len(res.Added) != 2 {
		t.Fatalf("unexpected first add: %+v", res)
	}

	// Queue now has 2/3. Adding 3 more must truncate to 1, the room left;
	// `max_size - (len + n)` would underflow here (3 - 5) with len=2, n=3.
	res = q.Add([]Track{track("c"), track("d"), track("e")})
	if !res.Truncated {
		t.Fatalf("expected truncation")
	}
	if len(res.Added) != 1 {
		t.Fatalf("expected exactly 1 track appended, got %d", len(res.Added))
	}
	if q.Len() != 3 {
		t.Fatalf("expected queue len 3, got %d", q.Len())
	}

	// Already full: further adds report truncated with nothing added.
	res = q.Add([]Track{track("f")})
	if !res.Truncated || len(res.Added) != 0 {
		t.Fatalf("expected no-op truncation on full queue, got %+v", res)
	}
}

func TestQueueAddIsAppendOnly(t *testing.T) {
	q := NewQueue(10)
	q.Add([]Track{track("a"), track("b")})
	q.Add([]Track{track("c")})

	got := q.Slice(0, 10)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %d tracks, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Encoded != w {
			t.Fatalf("position %d: got %q want %q", i, got[i].Encoded, w)
		}
	}
}

func TestQueueAdvanceMusicModeDoesNotMove(t *testing.T) {
	q := NewQueue(10)
	q.Add([]Track{track("a"), track("b")})
	q.SetMode(LoopMusic)
	q.SetIndex(1)

	for i := 0; i < 3; i++ {
		_, ok := q.Advance()
		if !ok {
			t.Fatalf("expected music mode to return a track")
		}
		if q.Index() != 1 {
			t.Fatalf("music mode moved index to %d", q.Index())
		}
	}
}

func TestQueueAdvanceQueueModeWraps(t *testing.T) {
	q := NewQueue(10)
	q.Add([]Track{track("a"), track("b"), track("c")})
	q.SetMode(LoopQueue)
	q.SetIndex(2)

	tr, ok := q.Advance()
	if !ok || tr.Encoded != "a" {
		t.Fatalf("expected wrap to track a, got %+v ok=%v", tr, ok)
	}
	if q.Index() != 0 {
		t.Fatalf("expected index 0 after wrap, got %d", q.Index())
	}
}

func TestQueueAdvanceNoAutostartClampsAndReturnsAbsent(t *testing.T) {
	q := NewQueue(10)
	q.Add([]Track{track("a"), track("b")})
	q.SetMode(LoopNoAutostart)
	q.SetIndex(0)

	_, ok := q.Advance()
	if ok {
		t.Fatalf("noautostart must never autoplay")
	}
	if q.Index() != 1 {
		t.Fatalf("expected index to increment to 1, got %d", q.Index())
	}

	_, ok = q.Advance()
	if ok {
		t.Fatalf("noautostart must never autoplay")
	}
	if q.Index() != 1 {
		t.Fatalf("expected index clamped at 1, got %d", q.Index())
	}
}

func TestQueueAdvanceNoneStopsAtEnd(t *testing.T) {
	q := NewQueue(10)
	q.Add([]Track{track("a"), track("b")})
	q.SetIndex(1)

	_, ok := q.Advance()
	if ok {
		t.Fatalf("expected none mode to stop at end")
	}
	if q.Index() != 1 {
		t.Fatalf("expected index clamped at 1, got %d", q.Index())
	}
}

func TestQueueAdvanceRandomStaysInBounds(t *testing.T) {
	q := NewQueue(10)
	q.seedRand(42)
	q.Add([]Track{track("a"), track("b"), track("c")})
	q.SetMode(LoopRandom)

	for i := 0; i < 50; i++ {
		_, ok := q.Advance()
		if !ok {
			t.Fatalf("random mode should always autoplay")
		}
		if idx := q.Index(); idx < 0 || idx >= 3 {
			t.Fatalf("random index out of bounds: %d", idx)
		}
	}
}

func TestQueueShufflePreservesCurrentTrackIdentity(t *testing.T) {
	q := NewQueue(10)
	q.seedRand(7)
	q.Add([]Track{track("a"), track("b"), track("c"), track("d"), track("e")})
	q.SetIndex(2) // "c"

	q.Shuffle()

	current, ok := q.Current()
	if !ok || current.Encoded != "c" {
		t.Fatalf("expected current track to remain c, got %+v ok=%v", current, ok)
	}

	all := q.Slice(0, 10)
	if len(all) != 5 {
		t.Fatalf("shuffle changed length: %d", len(all))
	}
	seen := make(map[string]bool)
	for _, tr := range all {
		seen[tr.Encoded] = true
	}
	for _, want := range []string{"a", "b", "c", "d", "e"} {
		if !seen[want] {
			t.Fatalf("shuffle lost track %q", want)
		}
	}
}

func TestQueueSetIndexRejectsOutOfRange(t *testing.T) {
	q := NewQueue(10)
	q.Add([]Track{track("a")})

	if _, ok := q.SetIndex(5); ok {
		t.Fatalf("expected out-of-range SetIndex to fail")
	}
	if q.Index() != 0 {
		t.Fatalf("failed SetIndex must not mutate index")
	}
}

func TestQueueSkipAndPrevIgnoreLoopMode(t *testing.T) {
	q := NewQueue(10)
	q.Add([]Track{track("a"), track("b"), track("c")})
	q.SetMode(LoopMusic)
	q.SetIndex(2)

	tr, ok := q.Skip()
	if !ok || tr.Encoded != "a" {
		t.Fatalf("skip should wrap regardless of loop mode, got %+v", tr)
	}

	tr, ok = q.Prev()
	if !ok || tr.Encoded != "c" {
		t.Fatalf("prev should wrap regardless of loop mode, got %+v", tr)
	}
}
