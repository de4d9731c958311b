package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/models"
)

// MessageType discriminates messages on the room connection. The wire format
// is a flat JSON object carrying "type" plus type-specific fields.
type MessageType string

// Client to server.
const (
	TypeJoinRoom             MessageType = "join-room"
	TypePong                 MessageType = "pong"
	TypeSyncRequest          MessageType = "sync_request"
	TypeLeave                MessageType = "leave"
	TypeKickPlayer           MessageType = "kick-player"
	TypeLobbyChat            MessageType = "lobby-chat"
	TypeTriggerSpeakingOrder MessageType = "trigger-speaking-order"
)

// Server to client.
const (
	TypePing               MessageType = "ping"
	TypeRoomUpdate         MessageType = "room-update"
	TypePlayerLeft         MessageType = "player-left"
	TypePlayerDisconnected MessageType = "player-disconnected"
	TypePlayerReconnected  MessageType = "player-reconnected"
	TypeHostChanged        MessageType = "host-changed"
	TypePlayerKicked       MessageType = "player-kicked"
	TypePlayerRemoved      MessageType = "player-removed"
	TypeKicked             MessageType = "kicked"
	TypeSpeakingOrderWheel MessageType = "start-speaking-order-wheel"
	TypeLobbyChatMessage   MessageType = "lobby-chat-message"
)

// Host navigation markers travel in both directions: the host emits one when
// it changes screens and the server echoes it to the other participants.
const (
	TypeHostGameConfig       MessageType = "host-game-config"
	TypeHostBackToModeSelect MessageType = "host-back-to-mode-select"
	TypeHostBackToLobby      MessageType = "host-back-to-lobby"
)

// JoinRoom authenticates the connection against a room membership.
type JoinRoom struct {
	Type     MessageType `json:"type"`
	RoomCode string      `json:"roomCode"`
	PlayerID string      `json:"playerId"`
}

// Pong answers a server liveness probe.
type Pong struct {
	Type MessageType `json:"type"`
}

// SyncRequest asks the server to push the current authoritative snapshot.
type SyncRequest struct {
	Type MessageType `json:"type"`
}

// Leave announces an intentional exit before closing.
type Leave struct {
	Type MessageType `json:"type"`
}

// KickPlayer is a host-only request to remove another participant.
type KickPlayer struct {
	Type           MessageType `json:"type"`
	RoomCode       string      `json:"roomCode"`
	TargetPlayerID string      `json:"targetPlayerId"`
	RequesterID    string      `json:"requesterId"`
}

// LobbyChat sends a chat line to the room.
type LobbyChat struct {
	Type     MessageType `json:"type"`
	RoomCode string      `json:"roomCode"`
	Message  string      `json:"message"`
}

// HostFlow is the shared shape of the host navigation markers and the
// speaking-order trigger.
type HostFlow struct {
	Type     MessageType `json:"type"`
	RoomCode string      `json:"roomCode"`
}

// RoomUpdate carries a full authoritative snapshot.
type RoomUpdate struct {
	Room *models.Room `json:"room"`
}

// PlayerEvent is the shared shape of the per-player membership events.
type PlayerEvent struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// HostChanged announces host promotion after the previous host left.
type HostChanged struct {
	NewHostID   string `json:"newHostId"`
	NewHostName string `json:"newHostName"`
}

// Kicked tells this client it was removed from the room by the host.
type Kicked struct {
	Message string `json:"message"`
}

// SpeakingOrderWheel starts the speaking-order reveal on every client.
type SpeakingOrderWheel struct {
	SpeakingOrder []string          `json:"speakingOrder"`
	PlayerMap     map[string]string `json:"playerMap"`
}

// LobbyChatMessage is a chat line relayed by the server.
type LobbyChatMessage struct {
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
}

type envelope struct {
	Type MessageType `json:"type"`
}

// Parse decodes one inbound message into its typed payload. Unknown types
// return a nil payload with no error so the caller can skip them without
// stalling the read loop.
func Parse(raw []byte) (MessageType, interface{}, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", nil, fmt.Errorf("failed to decode message envelope: %w", err)
	}

	switch env.Type {
	case TypePing:
		return env.Type, nil, nil

	case TypeRoomUpdate:
		var payload RoomUpdate
		if err := json.Unmarshal(raw, &payload); err != nil {
			return env.Type, nil, fmt.Errorf("failed to decode room-update: %w", err)
		}
		return env.Type, payload, nil

	case TypePlayerLeft, TypePlayerDisconnected, TypePlayerReconnected,
		TypePlayerKicked, TypePlayerRemoved:
		var payload PlayerEvent
		if err := json.Unmarshal(raw, &payload); err != nil {
			return env.Type, nil, fmt.Errorf("failed to decode %s: %w", env.Type, err)
		}
		return env.Type, payload, nil

	case TypeHostChanged:
		var payload HostChanged
		if err := json.Unmarshal(raw, &payload); err != nil {
			return env.Type, nil, fmt.Errorf("failed to decode host-changed: %w", err)
		}
		return env.Type, payload, nil

	case TypeKicked:
		var payload Kicked
		if err := json.Unmarshal(raw, &payload); err != nil {
			return env.Type, nil, fmt.Errorf("failed to decode kicked: %w", err)
		}
		return env.Type, payload, nil

	case TypeSpeakingOrderWheel:
		var payload SpeakingOrderWheel
		if err := json.Unmarshal(raw, &payload); err != nil {
			return env.Type, nil, fmt.Errorf("failed to decode speaking-order wheel: %w", err)
		}
		return env.Type, payload, nil

	case TypeLobbyChatMessage:
		var payload LobbyChatMessage
		if err := json.Unmarshal(raw, &payload); err != nil {
			return env.Type, nil, fmt.Errorf("failed to decode lobby-chat-message: %w", err)
		}
		return env.Type, payload, nil

	case TypeHostGameConfig, TypeHostBackToModeSelect, TypeHostBackToLobby:
		return env.Type, nil, nil

	default:
		return env.Type, nil, nil
	}
}
