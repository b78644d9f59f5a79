package tracker_test

import (
	"testing"
	"time"

	"github.com/padseq/padseq/tracker"
)

func TestTrySendDoesNotBlock(t *testing.T) {
	c := make(chan int, 1)
	if !tracker.TrySend(c, 1) {
		t.Fatalf("send to an empty buffered channel should succeed")
	}
	if tracker.TrySend(c, 2) {
		t.Fatalf("send to a full channel should fail")
	}
}

func TestTimeoutReceive(t *testing.T) {
	c := make(chan int, 1)
	c <- 3
	if v, ok := tracker.TimeoutReceive(c, time.Second); !ok || v != 3 {
		t.Fatalf("got %v, %v; want 3, true", v, ok)
	}
	if _, ok := tracker.TimeoutReceive(c, time.Millisecond); ok {
		t.Fatalf("receive from an empty channel should time out")
	}
	close(c)
	if _, ok := tracker.TimeoutReceive(c, time.Second); ok {
		t.Fatalf("receive from a closed channel should report false")
	}
}

func TestNilBrokerDropsAlerts(t *testing.T) {
	var b *tracker.Broker
	b.SendAlert("Test", "nobody listens", tracker.Info)
}
