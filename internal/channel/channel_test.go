package channel

import "testing"

func TestBuffered_SendReceiveLen(t *testing.T) {
	ch := NewBuffered[string](2)
	ch.Send("367001234")
	ch.Send("367009999")
	if got := ch.Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
	ch.Close()

	var got []string
	for v := range ch.Receive() {
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != "367001234" || got[1] != "367009999" {
		t.Errorf("received %v", got)
	}
}

func TestUnbuffered_SynchronousHandoff(t *testing.T) {
	ch := NewUnbuffered[int]()
	done := make(chan int)
	go func() {
		done <- <-ch.Receive()
	}()
	ch.Send(7)
	if got := <-done; got != 7 {
		t.Errorf("received %d, want 7", got)
	}
	if ch.Len() != 0 {
		t.Errorf("Len = %d, want 0", ch.Len())
	}
	ch.Close()
}
