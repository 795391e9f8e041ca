package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/flightchess/game"
	utils "github.com/minaorangina/flightchess/internal"
	"github.com/minaorangina/flightchess/protocol"
	"github.com/minaorangina/flightchess/session"
	"github.com/stretchr/testify/require"
)

const wsTestTimeout = 2 * time.Second

func newTestManager(dice ...int) *session.Manager {
	return session.NewManager(session.Opts{
		NewDice: func() game.Dice { return game.NewFixedDice(dice...) },
	})
}

func newTestGameServer(dice ...int) (*GameServer, *session.Manager) {
	m := newTestManager(dice...)
	return NewServer(m, Opts{}), m
}

func mustMakeJson(t *testing.T, input interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(input)
	utils.AssertNoError(t, err)

	return data
}

func newPostRequest(path string, data []byte) *http.Request {
	return httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(data))
}

func serve(s http.Handler, r *http.Request) *httptest.ResponseRecorder {
	response := httptest.NewRecorder()
	s.ServeHTTP(response, r)
	return response
}

func decodeBody(t *testing.T, body io.Reader, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(v))
}

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("got status %d, want %d", got, want)
	}
}

// joinOverHTTP seats a player through the public API and returns their id
func joinOverHTTP(t *testing.T, serverURL, gameID, name string) string {
	t.Helper()

	body := mustMakeJson(t, JoinGameReq{GameID: gameID, Name: name})
	resp, err := http.Post(serverURL+"/join", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assertStatus(t, resp.StatusCode, http.StatusOK)

	var res protocol.JoinResult
	decodeBody(t, resp.Body, &res)
	require.True(t, res.Success, res.Message)

	return res.PlayerID
}

func mustDialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		var body []byte
		code := 0
		if resp != nil {
			body, _ = io.ReadAll(resp.Body)
			code = resp.StatusCode
		}
		t.Fatalf("could not open a ws connection on %s, code %d: %s, %v", url, code, body, err)
	}
	t.Cleanup(func() { ws.Close() })

	return ws
}

func makeWSUrl(serverURL, gameID, playerID string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") +
		"/ws?game_id=" + gameID + "&player_id=" + playerID
}

func readEnvelope(t *testing.T, ws *websocket.Conn) protocol.Envelope {
	t.Helper()

	ws.SetReadDeadline(time.Now().Add(wsTestTimeout))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)

	env, err := protocol.DecodeEnvelope(data)
	require.NoError(t, err)
	return env
}

func readTypes(t *testing.T, ws *websocket.Conn, n int) []protocol.MsgType {
	t.Helper()

	out := []protocol.MsgType{}
	for i := 0; i < n; i++ {
		out = append(out, readEnvelope(t, ws).Type)
	}
	return out
}

func sendInbound(t *testing.T, ws *websocket.Conn, msg protocol.InboundMessage) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(msg))
}

func readResult(t *testing.T, ws *websocket.Conn) protocol.ResultData {
	t.Helper()

	for {
		env := readEnvelope(t, ws)
		if env.Type != protocol.ResultType {
			continue
		}
		var res protocol.ResultData
		require.NoError(t, env.Decode(&res))
		return res
	}
}
