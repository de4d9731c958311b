package identity

import (
	"github.com/google/uuid"

	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/models"
)

// New mints a participant identity for this app session. The id is fresh on
// every launch; only the display name survives across sessions, via Prefs.
func New(name string) models.Player {
	return models.Player{
		UID:  "user-" + uuid.NewString(),
		Name: name,
	}
}
