package gamestore

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/models"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/notify"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/status"
)

const chatHistoryCap = 50

// ChatMessage is one lobby chat line held locally.
type ChatMessage struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
}

// Store is the process-scoped state container for one app session. It is
// constructed at startup and injected into every consumer; there is no
// package-level instance.
type Store struct {
	mu sync.RWMutex

	user              *models.Player
	room              *models.Room
	status            status.Status
	selectedMode      models.GameModeType
	selectedSubmode   string
	selectedThemeCode string
	gameConfig        *models.GameConfig
	enteredDuringGame bool
	disconnected      bool

	speakingOrder          []string
	speakingOrderPlayerMap map[string]string
	showSpeakingOrderWheel bool

	chat []ChatMessage

	notifications *notify.Queue
}

// New creates an empty store in the home state.
func New(notifications *notify.Queue) *Store {
	return &Store{
		status:        status.Home,
		notifications: notifications,
	}
}

// Notifications returns the notification queue handle.
func (s *Store) Notifications() *notify.Queue { return s.notifications }

// SetUser installs the local participant identity for this session.
func (s *Store) SetUser(user models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
}

// User returns the local participant identity, or nil before SetUser.
func (s *Store) User() *models.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Room returns the currently held snapshot, or nil outside a room.
func (s *Store) Room() *models.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room
}

// Status returns the derived application status.
func (s *Store) Status() status.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// EnteredDuringGame reports whether this participant joined mid-round.
func (s *Store) EnteredDuringGame() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enteredDuringGame
}

// IsDisconnected reports the user-visible reconnecting indicator.
func (s *Store) IsDisconnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disconnected
}

// SetDisconnected flips the user-visible reconnecting indicator.
func (s *Store) SetDisconnected(disconnected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnected = disconnected
}

// SelectedMode returns the locally selected game mode, or "".
func (s *Store) SelectedMode() models.GameModeType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedMode
}

// IsHost reports whether the local participant is the room's effective host.
func (s *Store) IsHost() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room != nil && s.user != nil && s.room.IsHost(s.user.UID)
}

// EnterRoom installs the snapshot returned by a create/join call and moves
// to the lobby. It precedes the first connection of this room membership.
func (s *Store) EnterRoom(room *models.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = room
	s.status = status.Lobby
	s.enteredDuringGame = false
}

// LeaveRoom clears room membership and returns to the home state. Callers
// must clear membership before closing the connection so a trailing close
// event finds nothing to reconnect to.
func (s *Store) LeaveRoom() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = nil
	s.status = status.Home
	s.selectedMode = ""
	s.selectedSubmode = ""
	s.selectedThemeCode = ""
	s.gameConfig = nil
	s.enteredDuringGame = false
	s.disconnected = false
	s.chat = nil
	s.clearSpeakingOrderLocked()
}

// InRoom reports whether a room membership is currently held.
func (s *Store) InRoom() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room != nil
}

// ApplySnapshot reconciles an inbound authoritative snapshot. Redundant
// re-broadcasts refresh the held reference without recomputing status or
// touching notifications.
func (s *Store) ApplySnapshot(room *models.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}

	validated := repairHost(room)

	res := status.Derive(status.Input{
		Room:                validated,
		SelfID:              s.user.UID,
		HadRoomWithSameCode: s.room != nil && s.room.Code == validated.Code,
	})

	if !SnapshotChanged(s.room, validated, s.status, res.Status) {
		s.room = validated
		return
	}

	s.room = validated
	s.status = res.Status
	s.enteredDuringGame = res.EnteredDuringGame
	if res.ClearSelectedMode {
		s.selectedMode = ""
		s.clearSpeakingOrderLocked()
	}

	log.Debug().
		Str("room_code", validated.Code).
		Str("status", string(res.Status)).
		Int("players", len(validated.Players)).
		Msg("snapshot applied")
}

// ReplaceRoom refreshes the held snapshot reference without any status
// recomputation. Used for the duplicate room-update the server emits right
// after an HTTP create/join.
func (s *Store) ReplaceRoom(room *models.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = repairHost(room)
}

// ReplaceRoomAfterHostAction installs the snapshot returned synchronously by
// a host reset or leave-game call and lands back in the lobby.
func (s *Store) ReplaceRoomAfterHostAction(room *models.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = repairHost(room)
	s.status = status.Lobby
	s.selectedMode = ""
	s.clearSpeakingOrderLocked()
}

// repairHost substitutes the first player as host when the designated host
// left the player list. Local derivation only; never sent to the server.
func repairHost(room *models.Room) *models.Room {
	if room.FindPlayer(room.HostID) != nil || len(room.Players) == 0 {
		return room
	}
	repaired := *room
	repaired.HostID = room.Players[0].UID
	return &repaired
}
