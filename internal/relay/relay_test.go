package relay

import (
	"context"
	"encoding/json"
	"testing"
)

type captured struct {
	events []Event
}

func (c *captured) Publish(_ context.Context, ev Event) {
	c.events = append(c.events, ev)
}

func TestFanoutDeliversToAll(t *testing.T) {
	a, b := &captured{}, &captured{}
	f := Fanout{a, nil, b}

	ev := Event{Type: EventSlotReserved, LotID: "lot-1", SlotID: "s-1", BookingID: "b-1", Status: "confirmed"}
	f.Publish(context.Background(), ev)

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("expected both downstreams to receive event: %d/%d", len(a.events), len(b.events))
	}
	if a.events[0] != ev {
		t.Fatalf("event mismatch: %#v", a.events[0])
	}
}

func TestEventJSONShape(t *testing.T) {
	ev := Event{Type: EventBookingCancelled, LotID: "lot-1", SlotID: "s-1", BookingID: "b-1", Status: "cancelled"}
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"type", "lot_id", "slot_id", "booking_id", "status"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("missing key %q in %s", k, raw)
		}
	}
	if _, ok := m["reason"]; ok {
		t.Fatalf("empty reason should be omitted: %s", raw)
	}
}

func TestHubRoomScoping(t *testing.T) {
	h := NewHub(nil)
	go h.Run()

	lot1 := &wsClient{send: make(chan []byte, 4), lotID: "lot-1"}
	lot2 := &wsClient{send: make(chan []byte, 4), lotID: "lot-2"}
	all := &wsClient{send: make(chan []byte, 4)}
	h.register <- lot1
	h.register <- lot2
	h.register <- all

	h.broadcast <- Event{Type: EventSlotReserved, LotID: "lot-1", SlotID: "s-1"}

	got := <-lot1.send
	var ev Event
	if err := json.Unmarshal(got, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.LotID != "lot-1" {
		t.Fatalf("lot mismatch: %s", ev.LotID)
	}
	<-all.send // 未指定房间的连接收到全部事件

	select {
	case msg := <-lot2.send:
		t.Fatalf("lot-2 room must not receive lot-1 event: %s", msg)
	default:
	}
}
