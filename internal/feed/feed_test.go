package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type rec struct {
	ID    string
	Value int
	Tags  []string
}

func (r rec) EntityID() string { return r.ID }

// scripted is a Fetcher that replays a sequence of results, repeating the last one.
type scripted struct {
	mu      sync.Mutex
	results [][]rec
	errs    []error
	calls   int
}

func (s *scripted) fetch(context.Context) ([]rec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return s.results[i], nil
}

func (s *scripted) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestEqual(t *testing.T) {
	a := []rec{{ID: "1", Value: 1, Tags: []string{"x"}}, {ID: "2", Value: 2}}
	reordered := []rec{{ID: "2", Value: 2}, {ID: "1", Value: 1, Tags: []string{"x"}}}
	copied := []rec{{ID: "1", Value: 1, Tags: append([]string(nil), "x")}, {ID: "2", Value: 2}}
	changed := []rec{{ID: "1", Value: 1, Tags: []string{"y"}}, {ID: "2", Value: 2}}

	if !Equal(a, reordered) {
		t.Error("reordered set should be equal")
	}
	if !Equal(a, copied) {
		t.Error("value-equal set with distinct backing arrays should be equal")
	}
	if Equal(a, changed) {
		t.Error("nested change should be detected")
	}
	if Equal(a, a[:1]) {
		t.Error("different lengths should differ")
	}
	if !Equal([]rec{}, nil) {
		t.Error("empty and nil should be equal")
	}
}

func TestDedup(t *testing.T) {
	var d Dedup[rec]

	if !d.Offer(nil) {
		t.Error("first offer must deliver, even when empty")
	}
	if d.Offer([]rec{}) {
		t.Error("empty after empty should not deliver")
	}
	if !d.Offer([]rec{{ID: "1"}}) {
		t.Error("new record should deliver")
	}

	next := []rec{{ID: "1"}}
	if d.Offer(next) {
		t.Error("identical set should not deliver")
	}
	next[0].Value = 9 // mutating the caller's slice must not alter the remembered set
	if !d.Offer(next) {
		t.Error("changed set should deliver")
	}

	last, ok := d.Last()
	if !ok || len(last) != 1 || last[0].Value != 9 {
		t.Errorf("Last() = %v, %v", last, ok)
	}
}

func TestSubscribe_FirstDeliveryIsSynchronous(t *testing.T) {
	src := &scripted{results: [][]rec{{{ID: "a1", Value: 1}}}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []rec
	unsubscribe := Subscribe(ctx, src.fetch, func(r []rec) { got = r }, WithInterval(time.Hour))
	defer unsubscribe()

	// No synchronisation needed: the callback ran before Subscribe returned.
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("first delivery = %v", got)
	}

	direct, _ := src.fetch(ctx)
	if !Equal(got, direct) {
		t.Errorf("first delivery %v differs from one-shot fetch %v", got, direct)
	}
}

func TestSubscribe_FirstDeliveryWhenEmpty(t *testing.T) {
	src := &scripted{results: [][]rec{{}}}
	calls := 0
	unsubscribe := Subscribe(context.Background(), src.fetch, func([]rec) { calls++ }, WithInterval(time.Hour))
	defer unsubscribe()

	if calls != 1 {
		t.Errorf("callbacks = %d, want 1 for an empty first result", calls)
	}
}

func TestSubscribe_DeliversOnlyChanges(t *testing.T) {
	first := []rec{{ID: "a1", Value: 1}}
	second := []rec{{ID: "a1", Value: 1}, {ID: "a2", Value: 2}}
	src := &scripted{results: [][]rec{first, first, first, second}}

	var mu sync.Mutex
	var deliveries [][]rec
	unsubscribe := Subscribe(context.Background(), src.fetch, func(r []rec) {
		mu.Lock()
		defer mu.Unlock()
		deliveries = append(deliveries, r)
	}, WithInterval(2*time.Millisecond))
	defer unsubscribe()

	waitFor(t, func() bool { return src.callCount() >= 8 })
	unsubscribe()

	mu.Lock()
	defer mu.Unlock()
	if len(deliveries) != 2 {
		t.Fatalf("deliveries = %d, want 2", len(deliveries))
	}
	if len(deliveries[1]) != 2 {
		t.Errorf("second delivery = %v, want both records", deliveries[1])
	}
}

func TestSubscribe_FailuresAreRetried(t *testing.T) {
	boom := errors.New("store down")
	src := &scripted{
		results: [][]rec{nil, nil, nil, {{ID: "a1"}}},
		errs:    []error{boom, boom, boom, nil},
	}

	var delivered atomic.Int32
	unsubscribe := Subscribe(context.Background(), src.fetch, func([]rec) { delivered.Add(1) }, WithInterval(2*time.Millisecond))
	defer unsubscribe()

	if delivered.Load() != 0 {
		t.Fatal("failed first fetch must not deliver")
	}
	waitFor(t, func() bool { return delivered.Load() == 1 })
	if src.callCount() < 4 {
		t.Errorf("fetch calls = %d, want at least 4", src.callCount())
	}
}

func TestSubscribe_UnsubscribeDiscardsInFlight(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(context.Context) ([]rec, error) {
		n := calls.Add(1)
		if n == 2 {
			close(started)
			<-release
			return []rec{{ID: "late"}}, nil
		}
		return []rec{{ID: "first"}}, nil
	}

	var delivered atomic.Int32
	unsubscribe := Subscribe(context.Background(), fetch, func([]rec) { delivered.Add(1) }, WithInterval(time.Millisecond))

	<-started
	unsubscribe()
	close(release)

	time.Sleep(20 * time.Millisecond)
	if delivered.Load() != 1 {
		t.Errorf("deliveries = %d, want only the first", delivered.Load())
	}
	if calls.Load() != 2 {
		t.Errorf("fetch calls = %d, want no polls after unsubscribe", calls.Load())
	}
	unsubscribe() // idempotent
}

func TestSubscribe_PollsDoNotOverlap(t *testing.T) {
	var inFlight, maxInFlight, calls atomic.Int32
	fetch := func(context.Context) ([]rec, error) {
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(3 * time.Millisecond) // slower than the interval
		inFlight.Add(-1)
		calls.Add(1)
		return nil, nil
	}

	unsubscribe := Subscribe(context.Background(), fetch, func([]rec) {}, WithInterval(time.Millisecond))
	waitFor(t, func() bool { return calls.Load() >= 5 })
	unsubscribe()

	if maxInFlight.Load() != 1 {
		t.Errorf("max concurrent polls = %d, want 1", maxInFlight.Load())
	}
}

func TestSubscribe_IndependentSubscriptions(t *testing.T) {
	a := &scripted{results: [][]rec{{{ID: "1"}}}}
	b := &scripted{results: [][]rec{{{ID: "1"}}}}

	var gotA, gotB int
	unA := Subscribe(context.Background(), a.fetch, func([]rec) { gotA++ }, WithInterval(time.Hour))
	unB := Subscribe(context.Background(), b.fetch, func([]rec) { gotB++ }, WithInterval(time.Hour))
	defer unA()
	defer unB()

	// A second subscriber must get its own first delivery even though the
	// set equals what the first subscriber already received.
	if gotA != 1 || gotB != 1 {
		t.Errorf("deliveries = %d/%d, want 1/1", gotA, gotB)
	}
}

func TestStream_ClosesOnCancel(t *testing.T) {
	src := &scripted{results: [][]rec{{{ID: "1"}}}}
	ctx, cancel := context.WithCancel(context.Background())

	ch := Stream(ctx, src.fetch, WithInterval(time.Millisecond))
	if first := <-ch; len(first) != 1 {
		t.Fatalf("first = %v", first)
	}
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream not closed after cancel")
		}
	}
}

func TestWatch_OnlyChanges(t *testing.T) {
	one := []rec{{ID: "1"}}
	two := []rec{{ID: "2"}, {ID: "1"}}
	src := &scripted{results: [][]rec{one, one, one, two, two}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := Watch(ctx, src.fetch, WithInterval(time.Millisecond))
	first := <-ch
	second := <-ch
	if len(first) != 1 || len(second) != 2 {
		t.Errorf("watch yielded %v then %v", first, second)
	}
	if src.callCount() < 4 {
		t.Errorf("fetch calls = %d, want at least 4 before the change", src.callCount())
	}
}

// changing yields a different set on every call.
func changing() Fetcher[rec] {
	var n atomic.Int32
	return func(context.Context) ([]rec, error) {
		return []rec{{ID: "1", Value: int(n.Add(1))}}, nil
	}
}

func TestWatch_CancelWithPendingChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := Watch(ctx, changing(), WithInterval(time.Millisecond))

	if first := <-ch; len(first) != 1 {
		t.Fatalf("first = %v", first)
	}
	// Let a changed set queue up behind the unread channel.
	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	select {
	case records, ok := <-ch:
		if ok {
			t.Fatalf("received %v after cancel, want closed channel", records)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel not closed after cancel")
	}
}

func TestDistinct_ClosesWhenInputCloses(t *testing.T) {
	in := make(chan []rec)
	out := Distinct(context.Background(), in)

	go func() {
		in <- []rec{{ID: "1"}}
		in <- []rec{{ID: "1"}}
		in <- []rec{{ID: "2"}}
		close(in)
	}()

	var got [][]rec
	for records := range out {
		got = append(got, records)
	}
	if len(got) != 2 || got[1][0].ID != "2" {
		t.Errorf("distinct forwarded %v, want the two different sets", got)
	}
}
