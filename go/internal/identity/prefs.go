package identity

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/models"
)

// PrefsRepository defines what callers need from durable local preferences.
// Reads return zero values when nothing is stored; writes never surface
// errors to the caller.
type PrefsRepository interface {
	SavedNickname() string
	SaveNickname(name string)
	ClearNickname()
	Language() string
	SaveLanguage(lang string)
	LocalGameConfig() *models.GameConfig
	SaveLocalGameConfig(cfg models.GameConfig)
}

type prefsFile struct {
	Nickname        string             `yaml:"nickname,omitempty"`
	Language        string             `yaml:"language,omitempty"`
	LocalGameConfig *models.GameConfig `yaml:"local_game_config,omitempty"`
}

// FilePrefs implements PrefsRepository on a small yaml file under the user
// config dir.
type FilePrefs struct {
	path string
}

// NewFilePrefs creates a preferences repository rooted at path. An empty path
// defaults to tikjogos/prefs.yaml under os.UserConfigDir.
func NewFilePrefs(path string) *FilePrefs {
	if path == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, "tikjogos", "prefs.yaml")
		} else {
			path = "prefs.yaml"
		}
	}
	return &FilePrefs{path: path}
}

func (p *FilePrefs) load() prefsFile {
	var pf prefsFile
	data, err := os.ReadFile(p.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Debug().Err(err).Str("path", p.path).Msg("failed to read prefs file")
		}
		return pf
	}
	if err := yaml.Unmarshal(data, &pf); err != nil {
		log.Warn().Err(err).Str("path", p.path).Msg("discarding unreadable prefs file")
		return prefsFile{}
	}
	return pf
}

func (p *FilePrefs) save(pf prefsFile) {
	data, err := yaml.Marshal(pf)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal prefs")
		return
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		log.Warn().Err(err).Str("path", p.path).Msg("failed to create prefs dir")
		return
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", p.path).Msg("failed to write prefs file")
	}
}

// SavedNickname returns the remembered display name, or "".
func (p *FilePrefs) SavedNickname() string {
	return p.load().Nickname
}

// SaveNickname remembers a display name for future launches. Blank names are
// ignored.
func (p *FilePrefs) SaveNickname(name string) {
	if name == "" {
		return
	}
	pf := p.load()
	pf.Nickname = name
	p.save(pf)
}

// ClearNickname forgets the remembered display name.
func (p *FilePrefs) ClearNickname() {
	pf := p.load()
	pf.Nickname = ""
	p.save(pf)
}

// Language returns the remembered UI language code, or "".
func (p *FilePrefs) Language() string {
	return p.load().Language
}

// SaveLanguage remembers the preferred UI language.
func (p *FilePrefs) SaveLanguage(lang string) {
	pf := p.load()
	pf.Language = lang
	p.save(pf)
}

// LocalGameConfig returns the remembered offline-mode configuration, or nil.
func (p *FilePrefs) LocalGameConfig() *models.GameConfig {
	return p.load().LocalGameConfig
}

// SaveLocalGameConfig remembers the offline-mode configuration.
func (p *FilePrefs) SaveLocalGameConfig(cfg models.GameConfig) {
	pf := p.load()
	pf.LocalGameConfig = &cfg
	p.save(pf)
}
