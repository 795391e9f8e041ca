package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"github.com/minaorangina/flightchess/engine"
	"github.com/minaorangina/flightchess/game"
	"github.com/minaorangina/flightchess/protocol"
	"github.com/minaorangina/flightchess/session"
	"github.com/minaorangina/flightchess/store"
	"go.uber.org/zap"
)

type NewGameReq struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"maxPlayers"`
}

type NewGameRes struct {
	GameID   string                  `json:"gameId"`
	PlayerID string                  `json:"playerId,omitempty"`
	Name     string                  `json:"name,omitempty"`
	GameData *protocol.GameStateData `json:"gameData,omitempty"`
}

type JoinGameReq struct {
	GameID string `json:"gameId"`
	Name   string `json:"name"`
}

type ReadyReq struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

// Opts configures a GameServer
type Opts struct {
	// AllowedOrigins lists the origins allowed by CORS and the websocket
	// upgrader. "*" allows any.
	AllowedOrigins []string
	Logger         *zap.Logger
}

// GameServer is a game server
type GameServer struct {
	manager  *session.Manager
	log      *zap.Logger
	upgrader websocket.Upgrader
	http.Server
}

// NewServer creates a new GameServer
func NewServer(manager *session.Manager, opts Opts) *GameServer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &GameServer{
		manager: manager,
		log:     opts.Logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}

	router := chi.NewRouter()
	router.Get("/healthz", s.HandleHealth)
	router.Post("/new", s.HandleNewGame)
	router.Post("/join", s.HandleJoinGame)
	router.Post("/ready", s.HandleReady)
	router.Get("/game/{gameID}", s.HandleFindGame)
	router.Get("/ws", s.HandleWS)

	cors := handlers.CORS(
		handlers.AllowedOrigins(opts.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	accessLog := zap.NewStdLog(opts.Logger.Named("http")).Writer()

	s.Handler = handlers.CombinedLoggingHandler(accessLog, cors(router))

	return s
}

// ServeHTTP serves http
func (g *GameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.Handler.ServeHTTP(w, r)
}

func (g *GameServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

// HandleNewGame handles a request to create a new game. A name in the
// request seats the creator straight away.
func (g *GameServer) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	var data NewGameReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()
	if err != nil && !isEmptyBody(err) {
		g.writeParseError(err, w, r)
		return
	}

	gameID, err := g.manager.CreateRoom(data.MaxPlayers)
	if err != nil {
		if errors.Is(err, game.ErrInvalidPlayerCount) {
			writeText(w, http.StatusBadRequest, err.Error())
			return
		}
		g.log.Error("could not create room", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	payload := NewGameRes{GameID: gameID}

	if strings.TrimSpace(data.Name) != "" {
		res := g.manager.Join(gameID, data.Name)
		if !res.Success {
			g.manager.Store().RemoveGame(gameID)
			writeText(w, http.StatusBadRequest, res.Message)
			return
		}
		payload.PlayerID = res.PlayerID
		payload.Name = strings.TrimSpace(data.Name)
		payload.GameData = res.GameData
	}

	g.writeJSON(w, http.StatusCreated, payload)
}

func (g *GameServer) HandleJoinGame(w http.ResponseWriter, r *http.Request) {
	var data JoinGameReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()

	if err != nil {
		g.writeParseError(err, w, r)
		return
	}

	if data.GameID == "" {
		writeText(w, http.StatusBadRequest, protocol.ErrMissingGameID.Error())
		return
	}

	if strings.TrimSpace(data.Name) == "" {
		writeText(w, http.StatusBadRequest, game.ErrMissingName.Error())
		return
	}

	res := g.manager.Join(data.GameID, data.Name)
	g.writeJSON(w, joinStatus(res), res)
}

func (g *GameServer) HandleReady(w http.ResponseWriter, r *http.Request) {
	var data ReadyReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()

	if err != nil {
		g.writeParseError(err, w, r)
		return
	}

	if data.GameID == "" {
		writeText(w, http.StatusBadRequest, protocol.ErrMissingGameID.Error())
		return
	}

	res := g.manager.MarkReady(data.GameID, data.PlayerID)
	g.writeJSON(w, resultStatus(res), res)
}

// HandleFindGame returns the public view of a room. Passing player_id
// includes that player's own hand.
func (g *GameServer) HandleFindGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	snap, err := g.manager.Snapshot(gameID, r.URL.Query().Get("player_id"))
	if err != nil {
		writeText(w, http.StatusNotFound, err.Error())
		return
	}

	g.writeJSON(w, http.StatusOK, snap)
}

func (g *GameServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	gameID := query.Get("game_id")
	if gameID == "" {
		writeText(w, http.StatusBadRequest, "missing game ID")
		return
	}

	playerID := query.Get("player_id")
	if playerID == "" {
		writeText(w, http.StatusBadRequest, "missing player ID")
		return
	}

	ge := g.manager.Store().FindGame(gameID)
	if ge == nil {
		writeText(w, http.StatusNotFound, store.ErrFnUnknownGameID(gameID).Error())
		return
	}
	if !ge.HasPlayer(playerID) {
		writeText(w, http.StatusForbidden, game.ErrUnknownPlayer.Error())
		return
	}

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		g.log.Debug("could not upgrade to websocket", zap.Error(err))
		return
	}

	log := g.log.With(zap.String("game_id", gameID), zap.String("player_id", playerID))
	conn := engine.NewWSConn(ws, log)

	if err := g.manager.Connect(gameID, playerID, conn); err != nil {
		log.Debug("could not connect player", zap.Error(err))
		conn.Close()
		return
	}

	conn.ReadPump(func(data []byte) {
		msg, err := protocol.DecodeInbound(data)
		if err != nil && !errors.Is(err, protocol.ErrUnknownType) {
			log.Debug("discarding message", zap.Error(err))
			g.reply(conn, log, protocol.ResultData{Request: msg.Type, Result: protocol.Fail(err)})
			return
		}

		// identity comes from the connection, not the payload.
		// Unknown types still go through so the sender hears why they failed.
		msg.GameID, msg.PlayerID = gameID, playerID
		res := g.manager.Receive(msg)
		g.reply(conn, log, res)

		if msg.Type == protocol.Leave && res.Success {
			// the room has let go of the connection; hang up once the reply is out
			conn.Close()
		}
	})

	g.manager.Disconnect(gameID, playerID, conn)
}

func (g *GameServer) reply(conn engine.Conn, log *zap.Logger, res protocol.ResultData) {
	data, err := protocol.Encode(protocol.OutboundMessage{Type: protocol.ResultType, Data: res})
	if err != nil {
		log.Error("could not encode result", zap.Error(err))
		return
	}
	if err := conn.Send(data); err != nil && !errors.Is(err, engine.ErrConnClosed) {
		log.Debug("could not send result", zap.Error(err))
	}
}
