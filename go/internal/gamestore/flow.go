package gamestore

import (
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/models"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/status"
)

// SelectMode records the host's mode choice. The secret-word mode has
// submodes, so selecting it moves to submode selection.
func (s *Store) SelectMode(mode models.GameModeType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedMode = mode
	if mode == models.ModeSecretWord {
		s.status = status.SubmodeSelect
	}
}

// SetSelectedSubmode records the chosen secret-word submode.
func (s *Store) SetSelectedSubmode(submode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedSubmode = submode
}

// SelectedSubmode returns the chosen secret-word submode, or "".
func (s *Store) SelectedSubmode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedSubmode
}

// SetSelectedThemeCode records the chosen theme code, "" to clear.
func (s *Store) SetSelectedThemeCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedThemeCode = code
}

// SelectedThemeCode returns the chosen theme code, or "".
func (s *Store) SelectedThemeCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedThemeCode
}

// SetGameConfig records the host-tuned round settings.
func (s *Store) SetGameConfig(cfg *models.GameConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameConfig = cfg
}

// GameConfig returns the host-tuned round settings, or nil.
func (s *Store) GameConfig() *models.GameConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gameConfig
}

// GoToModeSelect moves the local flow to mode selection.
func (s *Store) GoToModeSelect() {
	s.setStatus(status.ModeSelect)
}

// GoToGameConfig moves the local flow to round configuration.
func (s *Store) GoToGameConfig() {
	s.setStatus(status.GameConfig)
}

// BackToModeSelect returns the local flow to mode selection.
func (s *Store) BackToModeSelect() {
	s.setStatus(status.ModeSelect)
}

// BackToLobby returns to the lobby and restarts the selection flow.
func (s *Store) BackToLobby() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status.Lobby
	s.selectedMode = ""
	s.selectedSubmode = ""
	s.selectedThemeCode = ""
	s.gameConfig = nil
	s.chat = nil
}

// FollowHostFlow forces this participant's status to match a host
// navigation marker received over the connection, so the whole party moves
// between screens together.
func (s *Store) FollowHostFlow(st status.Status) {
	switch st {
	case status.GameConfig, status.ModeSelect:
		s.setStatus(st)
	case status.Lobby:
		s.BackToLobby()
	}
}

// Kicked handles server-initiated removal: membership is cleared and the
// session returns to the pre-room state.
func (s *Store) Kicked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = nil
	s.status = status.Home
	s.selectedMode = ""
}

func (s *Store) setStatus(st status.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

// AddChatMessage appends a lobby chat line, keeping only the most recent
// entries.
func (s *Store) AddChatMessage(msg ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.chat) >= chatHistoryCap {
		s.chat = s.chat[len(s.chat)-chatHistoryCap+1:]
	}
	s.chat = append(s.chat, msg)
}

// ChatMessages returns the held lobby chat history, oldest first.
func (s *Store) ChatMessages() []ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ChatMessage, len(s.chat))
	copy(out, s.chat)
	return out
}

// ClearChat drops the lobby chat history.
func (s *Store) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = nil
}

// SetSpeakingOrder installs the speaking order pushed by the server and shows
// the reveal wheel.
func (s *Store) SetSpeakingOrder(order []string, playerMap map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speakingOrder = order
	s.speakingOrderPlayerMap = playerMap
	s.showSpeakingOrderWheel = true
}

// SpeakingOrder returns the current speaking order, or nil.
func (s *Store) SpeakingOrder() ([]string, map[string]string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.speakingOrder, s.speakingOrderPlayerMap
}

// ShowSpeakingOrderWheel reports whether the reveal wheel should be visible.
func (s *Store) ShowSpeakingOrderWheel() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showSpeakingOrderWheel
}

// SetWheelVisible toggles the speaking-order reveal wheel.
func (s *Store) SetWheelVisible(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showSpeakingOrderWheel = show
}

// ClearSpeakingOrder drops any pending speaking-order state.
func (s *Store) ClearSpeakingOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSpeakingOrderLocked()
}

func (s *Store) clearSpeakingOrderLocked() {
	s.speakingOrder = nil
	s.speakingOrderPlayerMap = nil
	s.showSpeakingOrderWheel = false
}
