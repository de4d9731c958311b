package session

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/gamestore"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/notify"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/protocol"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/status"
)

// handleMessage reconciles one inbound message. A malformed or unknown
// message is logged and skipped; a failure in one handler never stops the
// read loop from processing the next message.
func (s *Supervisor) handleMessage(conn Conn, gen uint64, cs *connState, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("message handler panicked, message discarded")
		}
	}()

	s.mu.Lock()
	stale := gen != s.generation
	s.mu.Unlock()
	if stale {
		return
	}

	msgType, payload, err := protocol.Parse(raw)
	if err != nil {
		log.Warn().Err(err).Str("type", string(msgType)).Msg("discarding malformed message")
		return
	}

	switch msgType {
	case protocol.TypePing:
		s.write(conn, protocol.Pong{Type: protocol.TypePong})

	case protocol.TypeRoomUpdate:
		s.handleRoomUpdate(cs, payload.(protocol.RoomUpdate))

	case protocol.TypePlayerLeft:
		p := payload.(protocol.PlayerEvent)
		s.store.Notifications().Add(notify.CategoryPlayerLeft, fmt.Sprintf("%s saiu da sala", p.PlayerName))

	case protocol.TypePlayerDisconnected:
		p := payload.(protocol.PlayerEvent)
		s.store.Notifications().Add(notify.CategoryPlayerReconnected, fmt.Sprintf("%s desconectou temporariamente", p.PlayerName))

	case protocol.TypePlayerReconnected:
		s.handlePlayerReconnected(cs, payload.(protocol.PlayerEvent))

	case protocol.TypeHostChanged:
		p := payload.(protocol.HostChanged)
		s.store.Notifications().Add(notify.CategoryHostChanged, fmt.Sprintf("%s agora é o host da sala", p.NewHostName))

	case protocol.TypePlayerKicked:
		p := payload.(protocol.PlayerEvent)
		s.store.Notifications().Add(notify.CategoryPlayerKicked, fmt.Sprintf("%s foi expulso da sala", p.PlayerName))

	case protocol.TypePlayerRemoved:
		p := payload.(protocol.PlayerEvent)
		s.store.Notifications().Add(notify.CategoryPlayerRemoved, fmt.Sprintf("%s foi removido da sala", p.PlayerName))

	case protocol.TypeKicked:
		s.handleKicked(payload.(protocol.Kicked))

	case protocol.TypeSpeakingOrderWheel:
		p := payload.(protocol.SpeakingOrderWheel)
		s.store.SetSpeakingOrder(p.SpeakingOrder, p.PlayerMap)

	case protocol.TypeLobbyChatMessage:
		p := payload.(protocol.LobbyChatMessage)
		s.store.AddChatMessage(gamestore.ChatMessage{
			ID:         fmt.Sprintf("chat-%d-%s", p.Timestamp, p.SenderID),
			SenderID:   p.SenderID,
			SenderName: p.SenderName,
			Message:    p.Message,
			Timestamp:  p.Timestamp,
		})

	case protocol.TypeHostGameConfig:
		s.store.FollowHostFlow(status.GameConfig)

	case protocol.TypeHostBackToModeSelect:
		s.store.FollowHostFlow(status.ModeSelect)

	case protocol.TypeHostBackToLobby:
		s.store.FollowHostFlow(status.Lobby)

	default:
		log.Debug().Str("type", string(msgType)).Msg("ignoring unknown message type")
	}
}

// handleRoomUpdate applies a snapshot. Right after an HTTP create/join the
// server emits up to two room-updates for the same physical event (one
// direct reply effect, one from marking the participant connected). The
// first one refreshes the held room without recomputing status; only a
// later update may drive a transition.
func (s *Supervisor) handleRoomUpdate(cs *connState, update protocol.RoomUpdate) {
	if update.Room == nil {
		log.Warn().Msg("room-update without room payload")
		return
	}

	if cs.firstConnect && !cs.gotFirstUpdate {
		cs.gotFirstUpdate = true
		held := s.store.Room()
		if held != nil && held.Code == update.Room.Code {
			s.store.ReplaceRoom(update.Room)
			return
		}
	}
	s.store.ApplySnapshot(update.Room)
}

// handlePlayerReconnected suppresses the self-referential notification on the
// first connection: the server treats HTTP join plus the join-room handshake
// as a reconnect, but the user never actually dropped.
func (s *Supervisor) handlePlayerReconnected(cs *connState, p protocol.PlayerEvent) {
	user := s.store.User()
	if user != nil && p.PlayerID == user.UID && cs.firstConnect {
		return
	}
	s.store.Notifications().Add(notify.CategoryPlayerReconnected, fmt.Sprintf("%s reconectou", p.PlayerName))
}

// handleKicked is terminal for the session: membership is cleared, the
// connection retired, and the user returned to the pre-room state.
func (s *Supervisor) handleKicked(p protocol.Kicked) {
	message := p.Message
	if message == "" {
		message = "Você foi expulso da sala pelo host"
	}
	s.store.Notifications().Add(notify.CategoryPlayerKicked, message)
	s.store.Kicked()

	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.generation++
	s.roomCode = ""
	s.mu.Unlock()
	if conn != nil {
		s.closeNormal(conn)
	}
}
