package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/minaorangina/flightchess/game"
	"github.com/minaorangina/flightchess/protocol"
	"github.com/minaorangina/flightchess/store"
	"go.uber.org/zap"
)

func isEmptyBody(err error) bool {
	return errors.Is(err, io.EOF)
}

func (g *GameServer) writeParseError(err error, w http.ResponseWriter, r *http.Request) {
	if isEmptyBody(err) {
		writeText(w, http.StatusBadRequest, "Missing body")
		return
	}
	g.log.Debug("could not parse request", zap.String("path", r.URL.Path), zap.Error(err))
	writeText(w, http.StatusBadRequest, "Malformed body")
}

func (g *GameServer) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		g.log.Error("could not encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

// failure reasons that mean the room exists but cannot take the request
var conflicts = map[string]bool{
	game.ErrRoomFull.Error():      true,
	game.ErrDuplicateName.Error(): true,
	game.ErrGameStarted.Error():   true,
}

func joinStatus(res protocol.JoinResult) int {
	switch {
	case res.Success:
		return http.StatusOK
	case res.Message == store.ErrUnknownGameID.Error():
		return http.StatusNotFound
	case conflicts[res.Message]:
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func resultStatus(res protocol.Result) int {
	switch {
	case res.Success:
		return http.StatusOK
	case res.Message == store.ErrUnknownGameID.Error():
		return http.StatusNotFound
	case conflicts[res.Message]:
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}
