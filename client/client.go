package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/flightchess/protocol"
	"github.com/minaorangina/flightchess/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	requestTimeout = 10 * time.Second
	updateBuffer   = 64
)

var (
	ErrNotJoined    = errors.New("not seated in a game")
	ErrNotConnected = errors.New("not connected")
	ErrFnBadStatus  = func(code int, body string) error {
		return fmt.Errorf("unexpected status %d: %s", code, strings.TrimSpace(body))
	}
)

type Opts struct {
	// BaseURL is the server's http address, e.g. http://localhost:8000
	BaseURL    string
	HTTPClient *http.Client
	Dialer     *websocket.Dialer
	Logger     *zap.Logger
}

// Client talks to a flight chess server on behalf of one player
type Client struct {
	base   *url.URL
	http   *http.Client
	dialer *websocket.Dialer
	log    *zap.Logger

	mu       sync.RWMutex
	gameID   string
	playerID string
	replica  *Replica

	ws      *websocket.Conn
	writeMu sync.Mutex
	updates chan protocol.Envelope
}

func New(opts Opts) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: requestTimeout}
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		base:    base,
		http:    opts.HTTPClient,
		dialer:  opts.Dialer,
		log:     opts.Logger,
		updates: make(chan protocol.Envelope, updateBuffer),
	}, nil
}

func (c *Client) GameID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID
}

func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// Replica returns the local copy of the room, or nil before joining
func (c *Client) Replica() *Replica {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.replica
}

// Updates delivers every server message after it has been applied to the
// replica. Messages are dropped if nobody keeps up.
func (c *Client) Updates() <-chan protocol.Envelope {
	return c.updates
}

// CreateGame opens a new room. With a name, the caller is seated in it too.
func (c *Client) CreateGame(ctx context.Context, name string, maxPlayers int) (server.NewGameRes, error) {
	var res server.NewGameRes
	err := c.post(ctx, "/new", server.NewGameReq{Name: name, MaxPlayers: maxPlayers}, http.StatusCreated, &res)
	if err != nil {
		return res, err
	}

	if res.PlayerID != "" {
		c.seat(res.GameID, res.PlayerID, res.GameData)
	}
	return res, nil
}

// Join takes a seat in an existing room
func (c *Client) Join(ctx context.Context, gameID, name string) (protocol.JoinResult, error) {
	var res protocol.JoinResult
	if err := c.post(ctx, "/join", server.JoinGameReq{GameID: gameID, Name: name}, http.StatusOK, &res); err != nil {
		return res, err
	}
	c.seat(res.GameID, res.PlayerID, res.GameData)
	return res, nil
}

func (c *Client) seat(gameID, playerID string, snap *protocol.GameStateData) {
	replica := NewReplica(playerID, func() (protocol.GameStateData, error) {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return c.Fetch(ctx)
	})
	if snap != nil {
		replica.Replace(*snap)
	}

	c.mu.Lock()
	c.gameID, c.playerID, c.replica = gameID, playerID, replica
	c.mu.Unlock()
}

// Fetch asks the server for our view of the room
func (c *Client) Fetch(ctx context.Context) (protocol.GameStateData, error) {
	var snap protocol.GameStateData
	gameID, playerID := c.GameID(), c.PlayerID()
	if gameID == "" {
		return snap, ErrNotJoined
	}

	u := c.base.ResolveReference(&url.URL{
		Path:     "/game/" + gameID,
		RawQuery: url.Values{"player_id": {playerID}}.Encode(),
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return snap, err
	}
	err = c.do(req, http.StatusOK, &snap)
	return snap, err
}

// Resync replaces the replica with the server's view
func (c *Client) Resync(ctx context.Context) error {
	r := c.Replica()
	if r == nil {
		return ErrNotJoined
	}
	snap, err := c.Fetch(ctx)
	if err != nil {
		return err
	}
	r.Replace(snap)
	return nil
}

// Dial opens the websocket for the seated player
func (c *Client) Dial(ctx context.Context) error {
	gameID, playerID := c.GameID(), c.PlayerID()
	if gameID == "" {
		return ErrNotJoined
	}

	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"game_id": {gameID}, "player_id": {playerID}}.Encode()

	ws, resp, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("could not dial: %w", ErrFnBadStatus(resp.StatusCode, string(body)))
		}
		return fmt.Errorf("could not dial: %w", err)
	}

	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()
	return nil
}

// Run reads server messages into the replica until ctx is done or the
// connection drops. Updates is closed when Run returns.
func (c *Client) Run(ctx context.Context) error {
	c.mu.RLock()
	ws, replica := c.ws, c.replica
	c.mu.RUnlock()
	if ws == nil {
		return ErrNotConnected
	}
	defer close(c.updates)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		ws.Close()
		return nil
	})

	g.Go(func() error {
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return context.Canceled
				}
				return fmt.Errorf("connection lost: %w", err)
			}

			env, err := protocol.DecodeEnvelope(data)
			if err != nil {
				c.log.Debug("discarding message", zap.Error(err))
				continue
			}

			if err := replica.Apply(env); err != nil {
				c.log.Warn("could not apply message", zap.String("type", string(env.Type)), zap.Error(err))
			}

			select {
			case c.updates <- env:
			default:
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Send submits a request over the websocket. The room and player are
// always our own.
func (c *Client) Send(msg protocol.InboundMessage) error {
	c.mu.RLock()
	ws := c.ws
	msg.GameID, msg.PlayerID = c.gameID, c.playerID
	c.mu.RUnlock()
	if ws == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return ws.WriteJSON(msg)
}

func (c *Client) Ready() error {
	return c.Send(protocol.InboundMessage{Type: protocol.Ready})
}

func (c *Client) Roll() error {
	return c.Send(protocol.InboundMessage{Type: protocol.DiceRolled})
}

func (c *Client) Move() error {
	return c.Send(protocol.InboundMessage{Type: protocol.PieceMoved})
}

func (c *Client) UseCard(cardID int, targetID string) error {
	return c.Send(protocol.InboundMessage{Type: protocol.PropUsed, PropID: cardID, TargetPlayerID: targetID})
}

func (c *Client) Leave() error {
	return c.Send(protocol.InboundMessage{Type: protocol.Leave})
}

// Close hangs up the websocket
func (c *Client) Close() error {
	c.mu.Lock()
	ws := c.ws
	c.ws = nil
	c.mu.Unlock()
	if ws == nil {
		return nil
	}

	c.writeMu.Lock()
	ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	return ws.Close()
}

func (c *Client) post(ctx context.Context, path string, body interface{}, want int, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	u := c.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, want, out)
}

func (c *Client) do(req *http.Request, want int, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != want {
		// join failures still carry a JoinResult worth reporting
		var res protocol.Result
		if json.Unmarshal(body, &res) == nil && res.Message != "" {
			return ErrFnBadStatus(resp.StatusCode, res.Message)
		}
		return ErrFnBadStatus(resp.StatusCode, string(body))
	}

	return json.Unmarshal(body, out)
}
