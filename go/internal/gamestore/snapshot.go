package gamestore

import (
	"encoding/json"

	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/models"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/status"
)

// SnapshotChanged decides whether a newly arrived snapshot should trigger a
// state transition. The wire protocol carries no version counter, so a
// snapshot counts as unchanged when its room code, participant count,
// room-level status, serialized game data, and the status it derives all
// match what is already held. Unchanged snapshots still replace the stored
// reference but must not cause status churn or notification noise.
func SnapshotChanged(held, incoming *models.Room, heldStatus, derivedStatus status.Status) bool {
	if held == nil {
		return true
	}
	if held.Code != incoming.Code {
		return true
	}
	if heldStatus != derivedStatus {
		return true
	}
	if len(held.Players) != len(incoming.Players) {
		return true
	}
	if held.Status != incoming.Status {
		return true
	}
	return !gameDataEqual(held.GameData, incoming.GameData)
}

func gameDataEqual(a, b *models.GameData) bool {
	if a == nil && b == nil {
		return true
	}
	if (a == nil) != (b == nil) {
		return false
	}
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(aj) == string(bj)
}
