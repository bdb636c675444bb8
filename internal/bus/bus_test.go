package bus

import (
	"testing"

	"github.com/cryptohawk/cryptohawk/internal/models"
)

func TestBus_FanOut(t *testing.T) {
	b := New("test")
	a := b.Subscribe(4)
	c := b.Subscribe(4)

	n := models.Notification{ID: "n1", Message: "hello"}
	delivered, dropped := b.Publish(n)
	if delivered != 2 || dropped != 0 {
		t.Fatalf("Publish() = (%d, %d), want (2, 0)", delivered, dropped)
	}

	for _, ch := range []<-chan models.Notification{a, c} {
		select {
		case got := <-ch:
			if got.ID != "n1" {
				t.Errorf("received %q, want n1", got.ID)
			}
		default:
			t.Fatal("subscriber did not receive the notification")
		}
	}
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	b := New("test")
	delivered, dropped := b.Publish(models.Notification{ID: "n1"})
	if delivered != 0 || dropped != 0 {
		t.Errorf("Publish() = (%d, %d), want (0, 0)", delivered, dropped)
	}
}

func TestBus_DropsForSlowSubscriber(t *testing.T) {
	b := New("test")
	slow := b.Subscribe(1)
	fast := b.Subscribe(4)

	b.Publish(models.Notification{ID: "n1"})
	delivered, dropped := b.Publish(models.Notification{ID: "n2"})
	if delivered != 1 || dropped != 1 {
		t.Fatalf("Publish() = (%d, %d), want (1, 1)", delivered, dropped)
	}

	// The slow subscriber keeps its first notification; the fast one has both.
	if got := <-slow; got.ID != "n1" {
		t.Errorf("slow subscriber got %q, want n1", got.ID)
	}
	if len(fast) != 2 {
		t.Errorf("fast subscriber buffered %d, want 2", len(fast))
	}
}

func TestBus_Close(t *testing.T) {
	b := New("test")
	ch := b.Subscribe(1)
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("subscriber channel must be closed")
	}
	if delivered, dropped := b.Publish(models.Notification{ID: "n1"}); delivered != 0 || dropped != 0 {
		t.Error("publish after close must be a no-op")
	}

	// Subscribing after close yields an already-closed channel.
	late := b.Subscribe(1)
	if _, ok := <-late; ok {
		t.Error("late subscriber channel must be closed")
	}

	b.Close() // idempotent
}

func TestSubscribe_DefaultBuffer(t *testing.T) {
	b := New("test")
	ch := b.Subscribe(0)
	if cap(ch) != DefaultBuffer {
		t.Errorf("cap = %d, want %d", cap(ch), DefaultBuffer)
	}
}
