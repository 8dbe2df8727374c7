package server

import (
	"testing"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/log"
)

func TestConsole_BasicLogging(t *testing.T) {
	console := NewConsole(log.New("test"), 10)
	messages, cancel := console.Subscribe()
	defer cancel()

	console.Warningf("worker %d has no heartbeat", 3)

	select {
	case msg := <-messages:
		if msg.Message != "worker 3 has no heartbeat" {
			t.Errorf("Expected formatted message, got '%s'", msg.Message)
		}
		if msg.Level != "warning" {
			t.Errorf("Expected level 'warning', got '%s'", msg.Level)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for console message")
	}
}

func TestConsole_LevelsAndFanOut(t *testing.T) {
	console := NewConsole(log.New("test"), 10)
	first, cancelFirst := console.Subscribe()
	defer cancelFirst()
	second, cancelSecond := console.Subscribe()
	defer cancelSecond()

	console.Debugf("not forwarded")
	console.Info("one")
	console.Noticef("two")
	console.Error("three")

	expected := []struct{ level, message string }{
		{"info", "one"},
		{"notice", "two"},
		{"error", "three"},
	}
	for _, ch := range []<-chan ConsoleMessage{first, second} {
		for i, want := range expected {
			select {
			case msg := <-ch:
				if msg.Level != want.level || msg.Message != want.message {
					t.Errorf("Message %d = %s/%s, expected %s/%s", i, msg.Level, msg.Message, want.level, want.message)
				}
			case <-time.After(100 * time.Millisecond):
				t.Fatalf("Timeout waiting for message %d", i+1)
			}
		}
	}
}

func TestConsole_FullChannelDoesNotBlock(t *testing.T) {
	console := NewConsole(log.New("test"), 1)
	messages, cancel := console.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			console.Warning("flood")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Logging blocked on a full subscriber")
	}
	if len(messages) != 1 {
		t.Errorf("Expected the channel to hold 1 message, got %d", len(messages))
	}
}

func TestConsole_Unsubscribe(t *testing.T) {
	console := NewConsole(log.New("test"), 10)
	messages, cancel := console.Subscribe()
	cancel()

	console.Warning("after cancel")
	if len(messages) != 0 {
		t.Errorf("Unsubscribed channel received %d messages", len(messages))
	}
}
