package errpanel

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSendPostsEmbedToWebhook(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type, got %q", r.Header.Get("Content-Type"))
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := &Panel{webhookURL: srv.URL, stopChan: make(chan struct{})}
	p.Send(Report{Title: "boom", Message: "something broke"})

	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected exactly one webhook call, got %d", calls)
	}
}

func TestSendIsNoopWithoutWebhook(t *testing.T) {
	p := &Panel{stopChan: make(chan struct{})}
	// Must not panic or block without a configured webhook.
	p.Send(Report{Title: "boom", Message: "ignored"})
}

func TestIncrementAccumulatesErrorCount(t *testing.T) {
	p := &Panel{stopChan: make(chan struct{})}
	p.Increment()
	p.Increment()
	p.Increment()

	if got := atomic.LoadInt32(&p.errorCount); got != 3 {
		t.Fatalf("expected error count 3, got %d", got)
	}
}

func TestResetIntervalZeroesErrorCount(t *testing.T) {
	p := &Panel{
		stopChan:      make(chan struct{}),
		resetInterval: 5 * time.Millisecond,
		checkInterval: time.Hour,
	}
	p.errorCount = 9
	p.start()
	defer p.Stop()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&p.errorCount) == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("expected error count to reset to zero")
}
