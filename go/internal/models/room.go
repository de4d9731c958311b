package models

import (
	"time"
)

// RoomStatus defines the server-side phase of a room.
type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting"
	RoomStatusPlaying RoomStatus = "playing"
)

// GameModeType identifies one of the selectable party-game modes.
type GameModeType string

const (
	ModeSecretWord         GameModeType = "palavraSecreta"
	ModeWords              GameModeType = "palavras"
	ModeTwoFactions        GameModeType = "duasFaccoes"
	ModeCategoryItem       GameModeType = "categoriaItem"
	ModeDifferentQuestions GameModeType = "perguntasDiferentes"
	ModeCommunityWord      GameModeType = "palavraComunidade"
)

// Player is a room participant as the server reports it.
type Player struct {
	UID            string `json:"uid"`
	Name           string `json:"name"`
	WaitingForGame bool   `json:"waitingForGame,omitempty"`
	Connected      *bool  `json:"connected,omitempty"`
}

// PlayerAnswer is one participant's answer in question-based modes.
type PlayerAnswer struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Answer     string `json:"answer"`
}

// PlayerVote records one participant's impostor vote.
type PlayerVote struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	TargetID   string `json:"targetId"`
	TargetName string `json:"targetName"`
}

// GameConfig holds host-tunable round settings.
type GameConfig struct {
	ImpostorCount       int  `json:"impostorCount"`
	EnableHints         bool `json:"enableHints"`
	FirstPlayerHintOnly bool `json:"firstPlayerHintOnly"`
}

// GameData is the per-round payload. Which fields are set depends on the
// active game mode; the client treats it as opaque except for display.
type GameData struct {
	Word                 string            `json:"word,omitempty"`
	Location             string            `json:"location,omitempty"`
	Roles                map[string]string `json:"roles,omitempty"`
	Factions             *Factions         `json:"factions,omitempty"`
	FactionMap           map[string]string `json:"factionMap,omitempty"`
	Category             string            `json:"category,omitempty"`
	Item                 string            `json:"item,omitempty"`
	Question             string            `json:"question,omitempty"`
	ImpostorQuestion     string            `json:"impostorQuestion,omitempty"`
	QuestionRevealed     bool              `json:"questionRevealed,omitempty"`
	Answers              []PlayerAnswer    `json:"answers,omitempty"`
	AnswersRevealed      bool              `json:"answersRevealed,omitempty"`
	CrewQuestionRevealed bool              `json:"crewQuestionRevealed,omitempty"`
	Votes                []PlayerVote      `json:"votes,omitempty"`
	VotingStarted        bool              `json:"votingStarted,omitempty"`
	VotesRevealed        bool              `json:"votesRevealed,omitempty"`
	GameConfig           *GameConfig       `json:"gameConfig,omitempty"`
	ImpostorIDs          []string          `json:"impostorIds,omitempty"`
	Hint                 string            `json:"hint,omitempty"`
}

// Factions names the two sides in the two-factions mode.
type Factions struct {
	A string `json:"A"`
	B string `json:"B"`
}

// Room is the authoritative snapshot the server pushes. The client never
// mutates it; it only replaces the held value wholesale.
type Room struct {
	Code            string       `json:"code"`
	HostID          string       `json:"hostId"`
	Status          RoomStatus   `json:"status"`
	GameMode        GameModeType `json:"gameMode,omitempty"`
	CurrentCategory string       `json:"currentCategory,omitempty"`
	CurrentWord     string       `json:"currentWord,omitempty"`
	ImpostorID      string       `json:"impostorId,omitempty"`
	GameData        *GameData    `json:"gameData"`
	Players         []Player     `json:"players"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// FindPlayer returns the player with the given id, or nil.
func (r *Room) FindPlayer(id string) *Player {
	for i := range r.Players {
		if r.Players[i].UID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// EffectiveHostID returns the room's host id, substituting the first
// remaining player when the designated host is no longer in the player list.
// The repair is local-only and never written back to the server.
func (r *Room) EffectiveHostID() string {
	if r.FindPlayer(r.HostID) != nil {
		return r.HostID
	}
	if len(r.Players) > 0 {
		return r.Players[0].UID
	}
	return r.HostID
}

// IsHost reports whether the given participant is the room's effective host.
func (r *Room) IsHost(playerID string) bool {
	return playerID != "" && r.EffectiveHostID() == playerID
}
