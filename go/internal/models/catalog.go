package models

// GameMode is a catalog entry describing a selectable mode.
type GameMode struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Desc         string `json:"desc"`
	ImpostorGoal string `json:"impostorGoal"`
}

// CommunityTheme is a shared word list published by another player.
type CommunityTheme struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Words     []string `json:"words,omitempty"`
	WordCount int      `json:"wordCount"`
	Author    string   `json:"author,omitempty"`
}
