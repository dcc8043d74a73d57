package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNotify_QueuesCompanyMessage(t *testing.T) {
	hub := NewHub()
	companyID := uuid.New()

	hub.Notify(companyID, map[string]interface{}{"type": "stock_update", "action": "order_placed"})

	select {
	case msg := <-hub.Broadcast:
		if msg.CompanyID != companyID {
			t.Fatalf("expected company %s, got %s", companyID, msg.CompanyID)
		}
		var payload map[string]interface{}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if payload["action"] != "order_placed" {
			t.Fatalf("unexpected payload %v", payload)
		}
	default:
		t.Fatal("expected a queued message")
	}
}

func TestNotify_DropsUnencodablePayload(t *testing.T) {
	hub := NewHub()
	hub.Notify(uuid.New(), map[string]interface{}{"type": "bad", "ch": make(chan int)})

	select {
	case msg := <-hub.Broadcast:
		t.Fatalf("nothing should be queued, got %s", msg.Data)
	default:
	}
}
