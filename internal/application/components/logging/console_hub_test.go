package logging

import (
	"fmt"
	"testing"
)

func TestConsoleHubBacklogKeepsNewest(t *testing.T) {
	h := NewConsoleHub(3)
	for i := 0; i < 5; i++ {
		_, _ = h.Write([]byte(fmt.Sprintf("r%d", i)))
	}
	got := h.Backlog()
	if len(got) != 3 {
		t.Fatalf("backlog len=%d want 3", len(got))
	}
	for i, want := range []string{"r2", "r3", "r4"} {
		if string(got[i]) != want {
			t.Fatalf("backlog[%d]=%q want %q", i, got[i], want)
		}
	}
	if h.Written() != 5 {
		t.Fatalf("written=%d want 5", h.Written())
	}
}

func TestConsoleHubWriteCopiesBuffer(t *testing.T) {
	h := NewConsoleHub(2)
	buf := []byte("abc")
	_, _ = h.Write(buf)
	buf[0] = 'z'
	if string(h.Backlog()[0]) != "abc" {
		t.Fatal("hub must not alias the caller's buffer")
	}
}

func TestConsoleHubSubscribeReceivesLiveRecords(t *testing.T) {
	h := NewConsoleHub(10)
	_, _ = h.Write([]byte("old"))

	sub, backlog := h.Subscribe(4)
	defer sub.Close()
	if len(backlog) != 1 || string(backlog[0]) != "old" {
		t.Fatalf("unexpected backlog %q", backlog)
	}

	_, _ = h.Write([]byte("new"))
	if rec := <-sub.C; string(rec) != "new" {
		t.Fatalf("got %q want new", rec)
	}
}

func TestConsoleHubSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewConsoleHub(10)
	sub, _ := h.Subscribe(1)
	defer sub.Close()

	for i := 0; i < 4; i++ {
		_, _ = h.Write([]byte("x"))
	}
	if sub.Dropped() != 3 {
		t.Fatalf("dropped=%d want 3", sub.Dropped())
	}
}

func TestConsoleHubCloseEndsSubscriptions(t *testing.T) {
	h := NewConsoleHub(10)
	sub, _ := h.Subscribe(1)
	h.Close()
	if _, ok := <-sub.C; ok {
		t.Fatal("channel should be closed")
	}
	sub.Close() // no panic on double close
	if h.Subscribers() != 0 {
		t.Fatalf("subscribers=%d want 0", h.Subscribers())
	}

	late, _ := h.Subscribe(1)
	if _, ok := <-late.C; ok {
		t.Fatal("subscription on a closed hub should be closed")
	}
}
