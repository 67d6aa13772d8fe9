package secplan

import (
	"testing"
	"time"
)

func newTestClient(h *WsServer, userID uint64) *Client {
	return &Client{hub: h, send: make(chan []byte, 16), UserID: userID}
}

// registerAndWait 通过 hub 通道注册并等注册生效（Run 循环是异步的）。
func registerAndWait(t *testing.T, h *WsServer, c *Client) {
	t.Helper()
	h.register <- c

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		_, ok := h.clients[c]
		h.mu.RUnlock()
		if ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("client not registered in time")
}

func unregisterAndWait(t *testing.T, h *WsServer, c *Client) {
	t.Helper()
	h.unregister <- c

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		_, ok := h.clients[c]
		h.mu.RUnlock()
		if !ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("client not unregistered in time")
}

func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestWsServer_SendToUser_AllDevices(t *testing.T) {
	h := NewWsServer()
	go h.Run()

	// 同一用户两个端 + 另一个用户
	a1 := newTestClient(h, 1)
	a2 := newTestClient(h, 1)
	b := newTestClient(h, 2)
	registerAndWait(t, h, a1)
	registerAndWait(t, h, a2)
	registerAndWait(t, h, b)

	h.SendToUser(1, []byte("hola"))

	if got := drain(a1); len(got) != 1 || string(got[0]) != "hola" {
		t.Fatalf("a1 expected [hola], got %q", got)
	}
	if got := drain(a2); len(got) != 1 {
		t.Fatalf("a2 expected 1 message, got %d", len(got))
	}
	if got := drain(b); len(got) != 0 {
		t.Fatalf("b expected nothing, got %q", got)
	}
}

func TestWsServer_RoomIsolation(t *testing.T) {
	h := NewWsServer()
	go h.Run()

	inRoom1 := newTestClient(h, 1)
	inRoom2 := newTestClient(h, 2)
	noRoom := newTestClient(h, 3)
	registerAndWait(t, h, inRoom1)
	registerAndWait(t, h, inRoom2)
	registerAndWait(t, h, noRoom)

	h.JoinRoom(inRoom1, 10)
	h.JoinRoom(inRoom2, 20)

	h.BroadcastToRoom(10, []byte("m10"))

	if got := drain(inRoom1); len(got) != 1 || string(got[0]) != "m10" {
		t.Fatalf("room 10 member expected [m10], got %q", got)
	}
	if got := drain(inRoom2); len(got) != 0 {
		t.Fatalf("room 20 member must not receive room 10 broadcast, got %q", got)
	}
	if got := drain(noRoom); len(got) != 0 {
		t.Fatalf("roomless client must not receive broadcast, got %q", got)
	}

	// 房间成员关系不影响个人通道
	h.SendToUser(2, []byte("personal"))
	if got := drain(inRoom2); len(got) != 1 || string(got[0]) != "personal" {
		t.Fatalf("personal channel broken for room member, got %q", got)
	}
}

func TestWsServer_LeaveRoom(t *testing.T) {
	h := NewWsServer()
	go h.Run()

	c := newTestClient(h, 1)
	registerAndWait(t, h, c)

	h.JoinRoom(c, 10)
	h.LeaveRoom(c, 10)

	h.BroadcastToRoom(10, []byte("m"))
	if got := drain(c); len(got) != 0 {
		t.Fatalf("expected nothing after leave, got %q", got)
	}
}

func TestWsServer_UnregisterLeavesAllRooms(t *testing.T) {
	h := NewWsServer()
	go h.Run()

	gone := newTestClient(h, 1)
	stay := newTestClient(h, 2)
	registerAndWait(t, h, gone)
	registerAndWait(t, h, stay)

	h.JoinRoom(gone, 10)
	h.JoinRoom(stay, 10)

	unregisterAndWait(t, h, gone)

	// 断连的端从房间里消失；留下的端照常收
	h.BroadcastToRoom(10, []byte("m"))
	if got := drain(stay); len(got) != 1 {
		t.Fatalf("stay expected 1 message, got %d", len(got))
	}

	// 断连后个人通道也不再投递（send 已关闭，注册表已清）
	h.mu.RLock()
	_, ok := h.userClients[1]
	h.mu.RUnlock()
	if ok {
		t.Fatalf("user 1 should have no registered clients")
	}
}

func TestWsServer_SendSkipsUnregisteredClient(t *testing.T) {
	h := NewWsServer()
	go h.Run()

	c := newTestClient(h, 1)
	registerAndWait(t, h, c)
	unregisterAndWait(t, h, c)

	// unregister 时 send 已关闭：投递必须静默跳过，不得写已关闭的通道
	h.sendToClient(c, []byte("m"))
	h.SendToUser(1, []byte("m"))
}

func TestWsServer_FullBufferDropsMessage(t *testing.T) {
	h := NewWsServer()
	go h.Run()

	c := &Client{hub: h, send: make(chan []byte, 1), UserID: 1}
	registerAndWait(t, h, c)

	// 缓冲满时丢弃，不阻塞调用方
	h.SendToUser(1, []byte("first"))
	done := make(chan struct{})
	go func() {
		h.SendToUser(1, []byte("second"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("SendToUser blocked on full buffer")
	}

	got := drain(c)
	if len(got) != 1 || string(got[0]) != "first" {
		t.Fatalf("expected only first message, got %q", got)
	}
}
