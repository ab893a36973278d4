package eventbus

import "testing"

func TestBusPublishSubscribe(t *testing.T) {
	bus := New[string](0)
	ch := bus.Subscribe()
	bus.Publish("hello")
	if v := <-ch; v != "hello" {
		t.Fatalf("expected hello got %v", v)
	}
	bus.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after unsubscribe")
	}
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := New[int](2)
	ch := bus.Subscribe()
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}
	if got := bus.Dropped(); got != 3 {
		t.Fatalf("expected 3 dropped, got %d", got)
	}
	if v := <-ch; v != 0 {
		t.Fatalf("expected oldest event first, got %d", v)
	}
}

func TestBusCloseDrainsBuffered(t *testing.T) {
	bus := New[int](4)
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Publish(7)
	bus.Close()
	if v, ok := <-ch1; !ok || v != 7 {
		t.Fatalf("expected buffered event before close, got %v %v", v, ok)
	}
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	<-ch2
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	bus.Publish(8)
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatalf("expected closed channel from closed bus")
	}
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New[float64](1)
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
