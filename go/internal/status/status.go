package status

import (
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/models"
)

// Status is the client-local notion of which phase of the flow the
// presentation layer should show.
type Status string

const (
	Home          Status = "home"
	Lobby         Status = "lobby"
	ModeSelect    Status = "modeSelect"
	SubmodeSelect Status = "submodeSelect"
	GameConfig    Status = "gameConfig"
	Playing       Status = "playing"
)

// Input is everything the derivation depends on.
type Input struct {
	Room *models.Room
	// SelfID is the local participant id.
	SelfID string
	// HadRoomWithSameCode is true when a snapshot for this room code was
	// already held before this one arrived.
	HadRoomWithSameCode bool
}

// Result is the derived status plus its side flags.
type Result struct {
	Status Status
	// EnteredDuringGame marks a participant who joined mid-round and must
	// not be dropped into round UI.
	EnteredDuringGame bool
	// ClearSelectedMode is set when a fresh waiting state restarts the
	// round selection flow.
	ClearSelectedMode bool
}

// Derive maps an accepted snapshot to the status it implies. Rules apply in
// priority order; a participant parked with waitingForGame always lands in
// the lobby while a round is running.
func Derive(in Input) Result {
	room := in.Room

	self := room.FindPlayer(in.SelfID)
	waiting := self != nil && self.WaitingForGame

	switch {
	case waiting && room.Status == models.RoomStatusPlaying:
		return Result{Status: Lobby}

	case room.Status == models.RoomStatusPlaying && !in.HadRoomWithSameCode:
		return Result{Status: Lobby, EnteredDuringGame: true}

	case room.Status == models.RoomStatusPlaying:
		return Result{Status: Playing}

	default:
		return Result{Status: Lobby, ClearSelectedMode: true}
	}
}
