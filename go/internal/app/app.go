package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/clients/roomapi"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/gamestore"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/identity"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/models"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/session"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/themes"
)

// RoomAPI defines what the app layer needs from the room directory client.
type RoomAPI interface {
	CreateRoom(ctx context.Context, hostID, hostName string) (*models.Room, error)
	JoinRoom(ctx context.Context, code, playerID, playerName string) (*models.Room, error)
	StartGame(ctx context.Context, code string, req roomapi.StartGameRequest) error
	ResetRoom(ctx context.Context, code string) (*models.Room, error)
	LeaveGame(ctx context.Context, code, playerID string) (*models.Room, error)
	SubmitAnswer(ctx context.Context, code, playerID, answer string) error
	SubmitVote(ctx context.Context, code, playerID, targetID string) error
	RevealQuestion(ctx context.Context, code string) error
	StartVoting(ctx context.Context, code string) error
	RevealImpostor(ctx context.Context, code string) error
	GameModes(ctx context.Context) ([]models.GameMode, error)
	CommunityThemes(ctx context.Context) ([]models.CommunityTheme, error)
}

// App ties the identity store, room directory client, state container and
// connection supervisor into the session flows the presentation layer calls.
type App struct {
	store      *gamestore.Store
	api        RoomAPI
	supervisor *session.Supervisor
	prefs      identity.PrefsRepository

	// busy debounces double submission of create/join while a request is
	// in flight.
	busy atomic.Bool
}

// New creates the application facade.
func New(store *gamestore.Store, api RoomAPI, supervisor *session.Supervisor, prefs identity.PrefsRepository) *App {
	return &App{
		store:      store,
		api:        api,
		supervisor: supervisor,
		prefs:      prefs,
	}
}

// Store exposes the state container for the presentation layer to read.
func (a *App) Store() *gamestore.Store { return a.store }

// Supervisor exposes the connection supervisor for socket-borne actions.
func (a *App) Supervisor() *session.Supervisor { return a.supervisor }

// SetUser mints this session's participant identity under the given name.
func (a *App) SetUser(name string) {
	a.store.SetUser(identity.New(name))
}

// SavedNickname returns the display name remembered from an earlier session.
func (a *App) SavedNickname() string { return a.prefs.SavedNickname() }

// SaveNickname remembers the display name for future sessions.
func (a *App) SaveNickname(name string) { a.prefs.SaveNickname(name) }

// ClearNickname forgets the remembered display name.
func (a *App) ClearNickname() { a.prefs.ClearNickname() }

// CreateRoom creates a room hosted by the local user, enters it and opens
// the session connection. On failure the caller stays in the pre-room state;
// retry is up to the caller.
func (a *App) CreateRoom(ctx context.Context) error {
	user := a.store.User()
	if user == nil {
		return fmt.Errorf("no user identity set")
	}
	if !a.busy.CompareAndSwap(false, true) {
		return nil
	}
	defer a.busy.Store(false)

	room, err := a.api.CreateRoom(ctx, user.UID, user.Name)
	if err != nil {
		log.Error().Err(err).Msg("create room failed")
		return err
	}
	a.store.EnterRoom(room)
	a.supervisor.Connect(ctx, room.Code)
	return nil
}

// JoinRoom joins a room by code. Any refusal surfaces as
// roomapi.ErrJoinRejected; the backend does not say why.
func (a *App) JoinRoom(ctx context.Context, code string) error {
	user := a.store.User()
	if user == nil {
		return fmt.Errorf("no user identity set")
	}
	if !a.busy.CompareAndSwap(false, true) {
		return nil
	}
	defer a.busy.Store(false)

	room, err := a.api.JoinRoom(ctx, code, user.UID, user.Name)
	if err != nil {
		log.Warn().Err(err).Str("room_code", code).Msg("join room rejected")
		return err
	}
	a.store.EnterRoom(room)
	a.supervisor.Connect(ctx, room.Code)
	return nil
}

// StartGame starts a round with the locally selected mode, submode, theme
// and config. Host only; the new snapshot arrives over the connection.
func (a *App) StartGame(ctx context.Context) error {
	room := a.store.Room()
	mode := a.store.SelectedMode()
	if room == nil || mode == "" {
		return fmt.Errorf("no room or mode selected")
	}

	req := roomapi.StartGameRequest{
		GameMode:   mode,
		GameConfig: a.store.GameConfig(),
	}
	switch mode {
	case models.ModeSecretWord:
		req.SelectedSubmode = a.store.SelectedSubmode()
		req.ThemeCode = a.store.SelectedThemeCode()
	case models.ModeCommunityWord:
		req.ThemeCode = a.store.SelectedThemeCode()
	}

	if err := a.api.StartGame(ctx, room.Code, req); err != nil {
		log.Error().Err(err).Str("room_code", room.Code).Msg("start game failed")
		return err
	}
	return nil
}

// ReturnToLobby ends the current round: the host resets the room for
// everyone, a regular participant just leaves the round.
func (a *App) ReturnToLobby(ctx context.Context) error {
	room := a.store.Room()
	user := a.store.User()
	if room == nil || user == nil {
		return nil
	}

	if room.IsHost(user.UID) {
		updated, err := a.api.ResetRoom(ctx, room.Code)
		if err != nil {
			log.Error().Err(err).Str("room_code", room.Code).Msg("reset room failed")
			return err
		}
		a.store.ReplaceRoomAfterHostAction(updated)
		return nil
	}
	return a.LeaveCurrentGame(ctx)
}

// LeaveCurrentGame exits the running round while keeping room membership.
func (a *App) LeaveCurrentGame(ctx context.Context) error {
	room := a.store.Room()
	user := a.store.User()
	if room == nil || user == nil {
		return nil
	}
	updated, err := a.api.LeaveGame(ctx, room.Code, user.UID)
	if err != nil {
		log.Error().Err(err).Str("room_code", room.Code).Msg("leave game failed")
		return err
	}
	a.store.ReplaceRoomAfterHostAction(updated)
	return nil
}

// LeaveRoom exits the room entirely and closes the connection. Never
// schedules a reconnect.
func (a *App) LeaveRoom() {
	a.supervisor.Leave()
}

// SubmitAnswer sends the local participant's answer for the current round.
func (a *App) SubmitAnswer(ctx context.Context, answer string) error {
	room := a.store.Room()
	user := a.store.User()
	if room == nil || user == nil {
		return nil
	}
	return a.api.SubmitAnswer(ctx, room.Code, user.UID, answer)
}

// SubmitVote sends the local participant's impostor vote.
func (a *App) SubmitVote(ctx context.Context, targetID string) error {
	room := a.store.Room()
	user := a.store.User()
	if room == nil || user == nil {
		return nil
	}
	return a.api.SubmitVote(ctx, room.Code, user.UID, targetID)
}

// RevealQuestion reveals the round question. Host only.
func (a *App) RevealQuestion(ctx context.Context) error {
	room := a.store.Room()
	if room == nil {
		return nil
	}
	return a.api.RevealQuestion(ctx, room.Code)
}

// StartVoting opens the voting phase. Host only.
func (a *App) StartVoting(ctx context.Context) error {
	room := a.store.Room()
	if room == nil {
		return nil
	}
	return a.api.StartVoting(ctx, room.Code)
}

// RevealImpostor reveals the impostor. Host only.
func (a *App) RevealImpostor(ctx context.Context) error {
	room := a.store.Room()
	if room == nil {
		return nil
	}
	return a.api.RevealImpostor(ctx, room.Code)
}

// BuiltinThemes lists the static secret-word theme catalog.
func (a *App) BuiltinThemes() []themes.Theme { return themes.Builtin }

// WordCategories lists the static secret-word category catalog.
func (a *App) WordCategories() []themes.WordCategory { return themes.Categories }

// SelectBuiltinTheme picks a built-in theme by slug for the classic submode.
func (a *App) SelectBuiltinTheme(slug string) error {
	if themes.FindTheme(slug) == nil {
		return fmt.Errorf("unknown theme %q", slug)
	}
	a.store.SetSelectedThemeCode(slug)
	return nil
}

// FetchGameModes lists the selectable game modes from the server.
func (a *App) FetchGameModes(ctx context.Context) ([]models.GameMode, error) {
	return a.api.GameModes(ctx)
}

// FetchCommunityThemes lists public community word themes.
func (a *App) FetchCommunityThemes(ctx context.Context) ([]models.CommunityTheme, error) {
	return a.api.CommunityThemes(ctx)
}
