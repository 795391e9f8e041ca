package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/minaorangina/flightchess/game"
	"github.com/minaorangina/flightchess/protocol"
	"github.com/minaorangina/flightchess/server"
	"github.com/minaorangina/flightchess/session"
	"github.com/stretchr/testify/require"
)

const clientTestTimeout = 2 * time.Second

type TestBuffer struct {
	buf bytes.Buffer
	m   sync.Mutex
}

func NewTestBuffer() *TestBuffer {
	return &TestBuffer{}
}

func (tb *TestBuffer) Write(p []byte) (int, error) {
	tb.m.Lock()
	defer tb.m.Unlock()
	return tb.buf.Write(p)
}

func (tb *TestBuffer) String() string {
	tb.m.Lock()
	defer tb.m.Unlock()
	return tb.buf.String()
}

func envelope(t *testing.T, typ protocol.MsgType, data interface{}) protocol.Envelope {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return protocol.Envelope{Type: typ, Data: raw}
}

func twoPlayerState() protocol.GameStateData {
	return protocol.GameStateData{
		GameID:          "ABCDEF",
		Status:          "playing",
		CurrentPlayerID: "p1",
		Players: []protocol.PlayerState{
			{ID: "p1", Name: "Ann", Color: "red", Pieces: [4]int{-1, -1, -1, -1}},
			{ID: "p2", Name: "Bo", Color: "blue", Pieces: [4]int{-1, -1, -1, -1}},
		},
	}
}

func newTestServer(t *testing.T, dice ...int) (*httptest.Server, *session.Manager) {
	t.Helper()
	m := session.NewManager(session.Opts{
		NewDice: func() game.Dice { return game.NewFixedDice(dice...) },
	})
	s := httptest.NewServer(server.NewServer(m, server.Opts{}))
	t.Cleanup(func() {
		m.Shutdown()
		s.Close()
	})
	return s, m
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Opts{BaseURL: baseURL})
	require.NoError(t, err)
	return c
}

// runClient dials and starts the read loop, stopping it when the test ends
func runClient(t *testing.T, c *Client) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Dial(ctx))

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(clientTestTimeout):
			t.Error("client did not stop")
		}
	})
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, clientTestTimeout, 10*time.Millisecond, msg)
}
