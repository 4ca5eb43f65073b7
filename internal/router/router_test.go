package router

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mistcall/strangerchat/internal/transport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// testClient pairs a dialed websocket connection with the Router/Hub it
// talks to, for tests that need to observe outbound events end to end.
type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func newTestRouter(t *testing.T) (*Router, *transport.Hub, func() *testClient) {
	t.Helper()

	hub := transport.NewHub("")
	rt := New(hub, nil, 0)
	rt.RegisterHandlers()

	gin.SetMode(gin.TestMode)
	g := gin.New()
	g.GET("/ws", func(c *gin.Context) { hub.ServeWS(c) })
	srv := httptest.NewServer(g)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	dial := func() *testClient {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return &testClient{t: t, conn: conn}
	}

	return rt, hub, dial
}

func (c *testClient) send(event string, payload any) {
	c.t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(c.t, err)
	env := transport.Envelope{Event: event, Payload: raw}
	data, err := json.Marshal(env)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, data))
}

// next reads the next envelope, skipping any whose event is in the skip
// list (used to step past connection_options / room_users noise).
func (c *testClient) next(skip ...string) transport.Envelope {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
outer:
	for {
		_, data, err := c.conn.ReadMessage()
		require.NoError(c.t, err)
		var env transport.Envelope
		require.NoError(c.t, json.Unmarshal(data, &env))
		for _, s := range skip {
			if env.Event == s {
				continue outer
			}
		}
		return env
	}
}

func (c *testClient) expectEvent(event string, skip ...string) transport.Envelope {
	c.t.Helper()
	env := c.next(skip...)
	require.Equal(c.t, event, env.Event)
	return env
}

func (c *testClient) noMoreMessages() {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := c.conn.ReadMessage()
	require.Error(c.t, err)
}
