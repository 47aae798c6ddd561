package handlers

import (
	"fmt"
	"sync"
	"testing"

	"gridwalk/messages"
	"gridwalk/network"
)

func testHandler() *ClientHandler {
	return &ClientHandler{conn: network.NewConnection(nil)}
}

func TestAddRemoveCount(t *testing.T) {
	cm := NewClientManager()
	if cm.Count() != 0 {
		t.Fatalf("expected an empty manager, got %d sessions", cm.Count())
	}

	cm.AddSession("s1", testHandler())
	cm.AddSession("s2", testHandler())
	if cm.Count() != 2 {
		t.Fatalf("expected 2 sessions, got %d", cm.Count())
	}

	cm.RemoveSession("s1")
	cm.RemoveSession("s1") // already gone
	if cm.Count() != 1 {
		t.Fatalf("expected 1 session, got %d", cm.Count())
	}
}

func TestSendToUnknownSessionIsDropped(t *testing.T) {
	cm := NewClientManager()
	// Must not panic or block.
	cm.Send("nobody", messages.BaseMessage{Type: messages.MessageTypePlayerState})
}

func TestConcurrentChurn(t *testing.T) {
	cm := NewClientManager()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", n)
			for j := 0; j < 100; j++ {
				cm.AddSession(id, testHandler())
				cm.Send(id, messages.BaseMessage{Type: messages.MessageTypePlayerState})
				cm.RemoveSession(id)
				cm.Count()
			}
		}(i)
	}
	wg.Wait()

	if cm.Count() != 0 {
		t.Fatalf("expected 0 sessions after churn, got %d", cm.Count())
	}
}
