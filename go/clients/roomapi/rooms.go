package roomapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/models"
)

// CreateRoomRequest identifies the creating host.
type CreateRoomRequest struct {
	HostID   string `json:"hostId"`
	HostName string `json:"hostName"`
}

// JoinRoomRequest identifies the joining participant.
type JoinRoomRequest struct {
	Code       string `json:"code"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// StartGameRequest configures the round the host is starting.
type StartGameRequest struct {
	GameMode        models.GameModeType `json:"gameMode"`
	GameConfig      *models.GameConfig  `json:"gameConfig,omitempty"`
	SelectedSubmode string              `json:"selectedSubmode,omitempty"`
	ThemeCode       string              `json:"themeCode,omitempty"`
}

// CreateRoom creates a new room hosted by the given participant and returns
// its initial snapshot. On failure the caller stays in its pre-room state; no
// retry is scheduled.
func (c *Client) CreateRoom(ctx context.Context, hostID, hostName string) (*models.Room, error) {
	body, err := c.postJSON(ctx, "/api/rooms/create", CreateRoomRequest{
		HostID:   hostID,
		HostName: hostName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return decodeRoom(body)
}

// JoinRoom joins an existing room by code and returns its snapshot. Any
// refusal or transport failure yields ErrJoinRejected.
func (c *Client) JoinRoom(ctx context.Context, code, playerID, playerName string) (*models.Room, error) {
	body, err := c.postJSON(ctx, "/api/rooms/join", JoinRoomRequest{
		Code:       strings.ToUpper(code),
		PlayerID:   playerID,
		PlayerName: playerName,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJoinRejected, err)
	}
	return decodeRoom(body)
}

// StartGame starts a round. Host only. The new snapshot arrives over the
// room connection, not in this response.
func (c *Client) StartGame(ctx context.Context, code string, req StartGameRequest) error {
	if req.ThemeCode != "" {
		req.ThemeCode = strings.ToUpper(strings.TrimSpace(req.ThemeCode))
	}
	if _, err := c.postJSON(ctx, "/api/rooms/"+code+"/start", req); err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	return nil
}

// ResetRoom returns the room to the waiting state. Host only.
func (c *Client) ResetRoom(ctx context.Context, code string) (*models.Room, error) {
	body, err := c.postJSON(ctx, "/api/rooms/"+code+"/reset", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to reset room: %w", err)
	}
	return decodeRoom(body)
}

// LeaveGame removes the participant from the current round while keeping room
// membership.
func (c *Client) LeaveGame(ctx context.Context, code, playerID string) (*models.Room, error) {
	body, err := c.postJSON(ctx, "/api/rooms/"+code+"/leave-game", map[string]string{
		"playerId": playerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to leave game: %w", err)
	}
	return decodeRoom(body)
}

// SubmitAnswer sends this participant's answer. The updated snapshot is
// observed through the room connection.
func (c *Client) SubmitAnswer(ctx context.Context, code, playerID, answer string) error {
	_, err := c.postJSON(ctx, "/api/rooms/"+code+"/answer", map[string]string{
		"playerId": playerID,
		"answer":   answer,
	})
	if err != nil {
		return fmt.Errorf("failed to submit answer: %w", err)
	}
	return nil
}

// SubmitVote sends this participant's impostor vote.
func (c *Client) SubmitVote(ctx context.Context, code, playerID, targetID string) error {
	_, err := c.postJSON(ctx, "/api/rooms/"+code+"/vote", map[string]string{
		"playerId": playerID,
		"targetId": targetID,
	})
	if err != nil {
		return fmt.Errorf("failed to submit vote: %w", err)
	}
	return nil
}

// RevealQuestion reveals the round question to all participants. Host only.
func (c *Client) RevealQuestion(ctx context.Context, code string) error {
	if _, err := c.postJSON(ctx, "/api/rooms/"+code+"/reveal-question", nil); err != nil {
		return fmt.Errorf("failed to reveal question: %w", err)
	}
	return nil
}

// StartVoting opens the voting phase. Host only.
func (c *Client) StartVoting(ctx context.Context, code string) error {
	if _, err := c.postJSON(ctx, "/api/rooms/"+code+"/start-voting", nil); err != nil {
		return fmt.Errorf("failed to start voting: %w", err)
	}
	return nil
}

// RevealImpostor reveals the impostor to all participants. Host only.
func (c *Client) RevealImpostor(ctx context.Context, code string) error {
	if _, err := c.postJSON(ctx, "/api/rooms/"+code+"/reveal-impostor", nil); err != nil {
		return fmt.Errorf("failed to reveal impostor: %w", err)
	}
	return nil
}

func decodeRoom(body []byte) (*models.Room, error) {
	var room models.Room
	if err := json.Unmarshal(body, &room); err != nil {
		return nil, fmt.Errorf("failed to decode room: %w", err)
	}
	return &room, nil
}
