package session

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/protocol"
)

// KickPlayer asks the server to remove another participant. Host only, and
// never against yourself.
func (s *Supervisor) KickPlayer(targetPlayerID string) {
	room := s.store.Room()
	user := s.store.User()
	conn := s.currentConn()
	if room == nil || user == nil || conn == nil {
		return
	}
	if !room.IsHost(user.UID) || targetPlayerID == user.UID {
		return
	}
	s.write(conn, protocol.KickPlayer{
		Type:           protocol.TypeKickPlayer,
		RoomCode:       room.Code,
		TargetPlayerID: targetPlayerID,
		RequesterID:    user.UID,
	})
}

// SendLobbyChat sends a chat line to the room. Blank lines are dropped.
func (s *Supervisor) SendLobbyChat(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	room := s.store.Room()
	conn := s.currentConn()
	if room == nil || conn == nil {
		return
	}
	s.write(conn, protocol.LobbyChat{
		Type:     protocol.TypeLobbyChat,
		RoomCode: room.Code,
		Message:  message,
	})
}

// TriggerSpeakingOrderWheel asks the server to draw and broadcast a speaking
// order. Host only. Local pending order is cleared so the reveal starts
// fresh on every client.
func (s *Supervisor) TriggerSpeakingOrderWheel() {
	room := s.store.Room()
	user := s.store.User()
	conn := s.currentConn()
	if room == nil || user == nil || conn == nil {
		return
	}
	if !room.IsHost(user.UID) {
		return
	}
	s.store.ClearSpeakingOrder()
	s.write(conn, protocol.HostFlow{
		Type:     protocol.TypeTriggerSpeakingOrder,
		RoomCode: room.Code,
	})
}

// GoToModeSelect moves the local flow to mode selection.
func (s *Supervisor) GoToModeSelect() {
	s.store.GoToModeSelect()
}

// GoToGameConfig moves to round configuration and, when this participant
// hosts the room, broadcasts the transition so followers move too.
func (s *Supervisor) GoToGameConfig() {
	s.store.GoToGameConfig()
	s.broadcastHostFlow(protocol.TypeHostGameConfig)
}

// BackToModeSelect returns to mode selection, broadcast by the host.
func (s *Supervisor) BackToModeSelect() {
	s.store.BackToModeSelect()
	s.broadcastHostFlow(protocol.TypeHostBackToModeSelect)
}

// BackToLobby returns to the lobby, broadcast by the host.
func (s *Supervisor) BackToLobby() {
	s.store.BackToLobby()
	s.broadcastHostFlow(protocol.TypeHostBackToLobby)
}

func (s *Supervisor) broadcastHostFlow(msgType protocol.MessageType) {
	room := s.store.Room()
	user := s.store.User()
	conn := s.currentConn()
	if room == nil || user == nil || conn == nil {
		return
	}
	if !room.IsHost(user.UID) {
		return
	}
	s.write(conn, protocol.HostFlow{Type: msgType, RoomCode: room.Code})
	log.Debug().Str("type", string(msgType)).Str("room_code", room.Code).Msg("host flow broadcast")
}
