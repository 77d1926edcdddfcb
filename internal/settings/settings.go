// Package settings validates, persists and exchanges the user settings.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/example/vocabmaster/internal/apperrors"
	"github.com/example/vocabmaster/pkg/models"
)

// SettingsKey is the storage key holding the settings document
const SettingsKey = "settings"

const (
	MinBatchSize = 1
	MaxBatchSize = 20
)

var (
	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	sheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	modifiers       = map[string]bool{"alt": true, "ctrl": true, "shift": true, "meta": true}
)

// Defaults returns the settings seeded on first run
func Defaults() models.Settings {
	return models.Settings{
		ShortcutModifier: "alt",
		ShortcutKey:      "h",
		HighlightColor:   "#FFEB3B",
		ReviewBatchSize:  5,
		SheetURL:         "",
		SheetName:        "Sheet1",
	}
}

// Normalize lowercases the shortcut and trims every text field
func Normalize(s models.Settings) models.Settings {
	s.ShortcutModifier = strings.ToLower(strings.TrimSpace(s.ShortcutModifier))
	s.ShortcutKey = strings.ToLower(strings.TrimSpace(s.ShortcutKey))
	s.HighlightColor = strings.TrimSpace(s.HighlightColor)
	s.SheetURL = strings.TrimSpace(s.SheetURL)
	s.SheetName = strings.TrimSpace(s.SheetName)
	return s
}

// Validate checks every field and names the first invalid one
func Validate(s models.Settings) error {
	if !modifiers[s.ShortcutModifier] {
		return apperrors.Validation("shortcutModifier", "must be one of alt, ctrl, shift, meta; got %q", s.ShortcutModifier)
	}
	if utf8.RuneCountInString(s.ShortcutKey) != 1 {
		return apperrors.Validation("shortcutKey", "must be a single character, got %q", s.ShortcutKey)
	}
	if !hexColorPattern.MatchString(s.HighlightColor) {
		return apperrors.Validation("highlightColor", "must be a hex color like #FFEB3B, got %q", s.HighlightColor)
	}
	if s.ReviewBatchSize < MinBatchSize || s.ReviewBatchSize > MaxBatchSize {
		return apperrors.Validation("reviewBatchSize", "must be between %d and %d, got %d", MinBatchSize, MaxBatchSize, s.ReviewBatchSize)
	}
	if s.SheetURL != "" && !sheetURLPattern.MatchString(s.SheetURL) {
		return apperrors.Validation("sheetUrl", "not a Google Sheets URL: %q", s.SheetURL)
	}
	return nil
}

// Storage is the key-value persistence the repository writes through
type Storage interface {
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, values map[string][]byte) error
}

// Repository handles the persisted settings
type Repository struct {
	storage Storage
}

// NewRepository creates a new settings repository
func NewRepository(storage Storage) *Repository {
	return &Repository{storage: storage}
}

// Load returns the stored settings. Fields absent from storage take their default.
func (r *Repository) Load(ctx context.Context) (models.Settings, bool, error) {
	values, err := r.storage.Get(ctx, SettingsKey)
	if err != nil {
		return models.Settings{}, false, apperrors.Storage("get settings", err)
	}
	s := Defaults()
	raw, ok := values[SettingsKey]
	if !ok || len(raw) == 0 {
		return s, false, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.Settings{}, false, apperrors.Storage("decode settings", err)
	}
	return s, true, nil
}

// Save validates and stores s
func (r *Repository) Save(ctx context.Context, s models.Settings) (models.Settings, error) {
	s = Normalize(s)
	if s.SheetName == "" {
		s.SheetName = Defaults().SheetName
	}
	if err := Validate(s); err != nil {
		return models.Settings{}, err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := r.storage.Set(ctx, map[string][]byte{SettingsKey: data}); err != nil {
		return models.Settings{}, apperrors.Storage("set settings", err)
	}
	return s, nil
}
