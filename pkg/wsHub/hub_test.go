package ws

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	"github.com/gorilla/websocket"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewConnHub(logger.New(io.Discard, "test", logger.LevelError))
	upgrader := websocket.Upgrader{}
	registered := make(chan struct{}, 2)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn(context.Background(), c)
		_ = hub.Add(conn)
		registered <- struct{}{}
		_ = conn.Listen()
		_ = hub.Delete(conn.ID())
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	var clients []*websocket.Conn
	for range 2 {
		c, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer c.Close()
		clients = append(clients, c)
		<-registered
	}

	if got := hub.Broadcast(map[string]string{"type": "dashboard"}); got != 2 {
		t.Fatalf("Broadcast() reached %d clients, want 2", got)
	}

	for _, c := range clients {
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg map[string]string
		if err := c.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if msg["type"] != "dashboard" {
			t.Errorf("msg = %v", msg)
		}
	}

	hub.Close()
	if hub.Count() != 0 {
		t.Errorf("Count() after Close = %d", hub.Count())
	}
}
