package roomapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/models"
)

// GameModes lists the selectable game modes.
func (c *Client) GameModes(ctx context.Context) ([]models.GameMode, error) {
	body, err := c.get(ctx, "/api/game-modes")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game modes: %w", err)
	}
	var modes []models.GameMode
	if err := json.Unmarshal(body, &modes); err != nil {
		return nil, fmt.Errorf("failed to decode game modes: %w", err)
	}
	return modes, nil
}

// CommunityThemes lists public community word themes.
func (c *Client) CommunityThemes(ctx context.Context) ([]models.CommunityTheme, error) {
	body, err := c.get(ctx, "/api/community-themes")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch community themes: %w", err)
	}
	var themes []models.CommunityTheme
	if err := json.Unmarshal(body, &themes); err != nil {
		return nil, fmt.Errorf("failed to decode community themes: %w", err)
	}
	return themes, nil
}
