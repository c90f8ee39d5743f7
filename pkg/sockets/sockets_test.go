package sockets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			mt, msg, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if err := ws.WriteMessage(mt, msg); err != nil {
				return
			}
		}
	}))
}

func TestConn_SendAndReceive(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	received := make(chan []byte, 1)
	connected := make(chan struct{})

	c := New(
		OnConnected(func(conn Connection) {
			close(connected)
		}),
		OnMessage(func(data []byte, conn Connection) {
			received <- data
		}),
	)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	require.NoError(t, c.Dial(context.Background(), url, nil))
	defer c.Close()

	select {
	case <-connected:
	case <-time.After(time.Second):
		t.Fatal("OnConnected never fired")
	}

	require.NoError(t, c.Send(Msg{Body: []byte(`{"type":"ping"}`)}))

	select {
	case msg := <-received:
		assert.JSONEq(t, `{"type":"ping"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("no echo received")
	}
}

// Handlers fold incoming frames into shared state; a frame overtaking an
// earlier one would leave stale state behind.
func TestConn_MessagesDeliveredInOrder(t *testing.T) {
	const frames = 200
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for i := 0; i < frames; i++ {
			if err := ws.WriteMessage(websocket.TextMessage, []byte(strconv.Itoa(i))); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})
	c := New(OnMessage(func(data []byte, _ Connection) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, string(data))
		if len(got) == frames {
			close(done)
		}
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	require.NoError(t, c.Dial(context.Background(), url, nil))
	defer c.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not all frames received")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, msg := range got {
		require.Equal(t, strconv.Itoa(i), msg)
	}
}

func TestConn_SendOnClosedConnection(t *testing.T) {
	c := New()
	err := c.Send(Msg{Body: []byte("x")})
	assert.Error(t, err)
	assert.False(t, c.IsConnected())
}

func TestConn_CloseStopsConnection(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	c := New()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	require.NoError(t, c.Dial(context.Background(), url, nil))
	assert.True(t, c.IsConnected())

	require.NoError(t, c.Close())
	assert.False(t, c.IsConnected())
	assert.Error(t, c.Send(Msg{Body: []byte("x")}))
}
