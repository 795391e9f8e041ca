package game

import (
	"github.com/minaorangina/flightchess/protocol"
)

// Snapshot builds the read-only view of the game for one viewer.
// Only the viewer's own hand is included; an empty viewerID hides every hand.
func (g *Game) Snapshot(gameID, viewerID string) protocol.GameStateData {
	s := protocol.GameStateData{
		GameID:             gameID,
		Status:             string(g.Status),
		Phase:              string(g.Phase()),
		Players:            make([]protocol.PlayerState, 0, len(g.Players)),
		CurrentPlayerIndex: g.CurrentTurnIdx,
		DiceValue:          g.DiceValue,
		DiceRolled:         g.DiceRolled,
	}

	if cp := g.CurrentPlayer(); cp != nil {
		s.CurrentPlayerID = cp.ID
	}

	for _, p := range g.Players {
		hand := g.props.Hand(p.ID)
		ps := protocol.PlayerState{
			ID:          p.ID,
			Name:        p.Name,
			Color:       p.Color,
			Pieces:      p.Pieces,
			StartOffset: p.StartOffset,
			Ready:       p.Ready,
			HandSize:    len(hand),
		}
		if p.ID == viewerID {
			ps.Hand = hand
		}
		s.Players = append(s.Players, ps)
	}

	for _, e := range g.Effects.Effects() {
		s.Effects = append(s.Effects, protocol.EffectState{
			Kind:      e.Kind,
			PlayerID:  e.TargetID,
			Remaining: e.Remaining,
			Magnitude: e.Magnitude,
		})
	}

	return s
}

// PlayerInfo lists the seated players in join order
func (g *Game) PlayerInfo() []protocol.PlayerInfo {
	info := make([]protocol.PlayerInfo, 0, len(g.Players))
	for _, p := range g.Players {
		info = append(info, protocol.PlayerInfo{PlayerID: p.ID, Name: p.Name})
	}
	return info
}

func (r RollResult) Message() protocol.OutboundMessage {
	return protocol.OutboundMessage{
		Type: protocol.DiceRolled,
		Data: protocol.DiceRolledData{PlayerID: r.PlayerID, DiceValue: r.Value},
	}
}

// Message builds the pieceMoved broadcast. A forfeited move has nothing to
// announce; the following gameState carries the new turn.
func (r MoveResult) Message() (protocol.OutboundMessage, bool) {
	if !r.Moved {
		return protocol.OutboundMessage{}, false
	}
	return protocol.OutboundMessage{
		Type: protocol.PieceMoved,
		Data: protocol.PieceMovedData{
			PlayerID:   r.PlayerID,
			PieceIndex: r.PieceIndex,
			FromPos:    r.FromPos,
			ToPos:      r.ToPos,
		},
	}, true
}

func (r UseResult) Message() protocol.OutboundMessage {
	return protocol.OutboundMessage{
		Type: protocol.PropUsed,
		Data: protocol.PropUsedData{
			PlayerID:       r.PlayerID,
			PropID:         r.Card.ID,
			TargetPlayerID: r.TargetID,
		},
	}
}

func buildPlayerMessage(t protocol.MsgType, p *Player) protocol.OutboundMessage {
	if t == protocol.PlayerLeft {
		return protocol.OutboundMessage{
			Type: t,
			Data: protocol.PlayerLeftData{PlayerID: p.ID, PlayerName: p.Name},
		}
	}
	return protocol.OutboundMessage{
		Type: t,
		Data: protocol.PlayerJoinedData{PlayerID: p.ID, PlayerName: p.Name},
	}
}

// JoinedMessage announces a new player
func JoinedMessage(p *Player) protocol.OutboundMessage {
	return buildPlayerMessage(protocol.PlayerJoined, p)
}

// LeftMessage announces a departed player
func LeftMessage(p *Player) protocol.OutboundMessage {
	return buildPlayerMessage(protocol.PlayerLeft, p)
}

// StartMessage announces that play has begun
func (g *Game) StartMessage(gameID string) protocol.OutboundMessage {
	return protocol.OutboundMessage{
		Type: protocol.GameStart,
		Data: protocol.GameStartData{GameID: gameID, Players: g.PlayerInfo()},
	}
}

// StateMessage wraps a snapshot for one viewer
func (g *Game) StateMessage(gameID, viewerID string) protocol.OutboundMessage {
	return protocol.OutboundMessage{
		Type: protocol.GameState,
		Data: g.Snapshot(gameID, viewerID),
	}
}

// Played is the private outcome of a card for the player who used it
func (r UseResult) Played() protocol.CardPlayedData {
	return protocol.CardPlayedData{
		Card:           r.Card,
		TargetPlayerID: r.TargetID,
		Viewed:         r.Viewed,
		Granted:        r.Granted,
	}
}
