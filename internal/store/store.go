// Package store keeps the collection of highlighted words.
//
// Every mutation rewrites the whole collection through the Storage
// collaborator. The in-memory copy is only replaced once the write succeeded,
// so a failed write leaves the previous state authoritative.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/vocabmaster/internal/apperrors"
	"github.com/example/vocabmaster/internal/spaced_repetition"
	"github.com/example/vocabmaster/pkg/models"
	"github.com/google/uuid"
)

// WordsKey is the storage key holding the word list
const WordsKey = "words"

// ErrWordNotFound is returned when an operation needs an existing word
var ErrWordNotFound = errors.New("word not found")

// Storage is the key-value persistence the store writes through
type Storage interface {
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, values map[string][]byte) error
}

// MergePolicy decides when a re-highlight merges into an existing record
type MergePolicy int

const (
	// MergeByWord keeps one record per normalized word
	MergeByWord MergePolicy = iota
	// MergeByLocation keeps one record per word and on-page location
	MergeByLocation
)

func (p MergePolicy) String() string {
	if p == MergeByLocation {
		return "location"
	}
	return "word"
}

// ParseMergePolicy parses "word" or "location"
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "word":
		return MergeByWord, nil
	case "location":
		return MergeByLocation, nil
	default:
		return MergeByWord, apperrors.Validation("merge_policy", "unknown policy %q", s)
	}
}

// Store handles word records
type Store struct {
	mu      sync.Mutex
	storage Storage
	policy  MergePolicy
	now     func() time.Time
	words   []models.WordRecord
	loaded  bool
}

// Option configures a Store
type Option func(*Store)

// WithMergePolicy selects the duplicate handling policy
func WithMergePolicy(p MergePolicy) Option {
	return func(s *Store) { s.policy = p }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store on top of storage
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		policy:  MergeByWord,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the word list from storage, replacing the in-memory copy
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) error {
	values, err := s.storage.Get(ctx, WordsKey)
	if err != nil {
		return apperrors.Storage("get words", err)
	}
	var words []models.WordRecord
	if raw, ok := values[WordsKey]; ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &words); err != nil {
			return apperrors.Storage("decode words", err)
		}
	}
	for i := range words {
		if words[i].ID == "" {
			words[i].ID = uuid.NewString()
		}
	}
	s.words = words
	s.loaded = true
	return nil
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

// commit persists next and swaps it in on success
func (s *Store) commit(ctx context.Context, next []models.WordRecord) error {
	if next == nil {
		next = []models.WordRecord{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode words: %w", err)
	}
	if err := s.storage.Set(ctx, map[string][]byte{WordsKey: data}); err != nil {
		return apperrors.Storage("set words", err)
	}
	s.words = next
	return nil
}

func (s *Store) snapshot() []models.WordRecord {
	return append([]models.WordRecord(nil), s.words...)
}

// Upsert records a highlight of text on page.
// An existing matching record gets its occurrence count bumped; its first-seen provenance is kept.
func (s *Store) Upsert(ctx context.Context, text string, page models.PageContext) (models.WordRecord, error) {
	word, err := Normalize(text)
	if err != nil {
		return models.WordRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return models.WordRecord{}, err
	}

	now := s.now()
	next := s.snapshot()
	for i := range next {
		if !s.matches(next[i], word, page.Location) {
			continue
		}
		next[i].OccurrenceCount++
		next[i].LastSeenAt = now
		if err := s.commit(ctx, next); err != nil {
			return models.WordRecord{}, err
		}
		return next[i].Clone(), nil
	}

	record := models.WordRecord{
		ID:              uuid.NewString(),
		Word:            word,
		OccurrenceCount: 1,
		FirstSeenAt:     now,
		LastSeenAt:      now,
		SourceURL:       page.URL,
		SourceTitle:     page.Title,
		ColorTag:        page.Color,
	}
	if page.Location != nil {
		loc := *page.Location
		record.Location = &loc
	}
	next = append(next, record)
	if err := s.commit(ctx, next); err != nil {
		return models.WordRecord{}, err
	}
	return record.Clone(), nil
}

func (s *Store) matches(record models.WordRecord, word string, loc *models.Location) bool {
	if record.Word != word {
		return false
	}
	if s.policy == MergeByLocation {
		return record.Location.Same(loc)
	}
	return true
}

// Get returns the first record for text
func (s *Store) Get(ctx context.Context, text string) (models.WordRecord, bool, error) {
	word, err := Normalize(text)
	if err != nil {
		return models.WordRecord{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return models.WordRecord{}, false, err
	}
	for _, w := range s.words {
		if w.Word == word {
			return w.Clone(), true, nil
		}
	}
	return models.WordRecord{}, false, nil
}

// List returns all records in insertion order
func (s *Store) List(ctx context.Context) ([]models.WordRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]models.WordRecord, len(s.words))
	for i, w := range s.words {
		out[i] = w.Clone()
	}
	return out, nil
}

// Delete removes the records for text. It reports whether anything was removed.
func (s *Store) Delete(ctx context.Context, text string) (bool, error) {
	word, err := Normalize(text)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}

	next := make([]models.WordRecord, 0, len(s.words))
	for _, w := range s.words {
		if w.Word != word {
			next = append(next, w)
		}
	}
	if len(next) == len(s.words) {
		return false, nil
	}
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteAllFor removes every record first seen on sourceURL
func (s *Store) DeleteAllFor(ctx context.Context, sourceURL string) (deleted, remaining int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return 0, 0, err
	}

	next := make([]models.WordRecord, 0, len(s.words))
	for _, w := range s.words {
		if w.SourceURL != sourceURL {
			next = append(next, w)
		}
	}
	deleted = len(s.words) - len(next)
	if deleted == 0 {
		return 0, len(s.words), nil
	}
	if err := s.commit(ctx, next); err != nil {
		return 0, len(s.words), err
	}
	return deleted, len(next), nil
}

// DeleteAll removes every record and returns how many there were
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	n := len(s.words)
	if err := s.commit(ctx, []models.WordRecord{}); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateMeaning sets the annotation of every record for text
func (s *Store) UpdateMeaning(ctx context.Context, text, meaning string) (models.WordRecord, error) {
	return s.update(ctx, text, func(w *models.WordRecord) {
		w.Meaning = strings.TrimSpace(meaning)
	})
}

// ApplyReview grades the record identified by target at now and persists the new review state.
// Records are matched by ID; a target without ID grades the first record for its word.
func (s *Store) ApplyReview(ctx context.Context, target models.WordRecord, knewIt bool, now time.Time) (models.WordRecord, error) {
	word, err := Normalize(target.Word)
	if target.ID == "" && err != nil {
		return models.WordRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return models.WordRecord{}, err
	}

	next := s.snapshot()
	idx := -1
	for i := range next {
		if (target.ID != "" && next[i].ID == target.ID) || (target.ID == "" && next[i].Word == word) {
			idx = i
			break
		}
	}
	if idx < 0 {
		name := target.ID
		if name == "" {
			name = word
		}
		return models.WordRecord{}, fmt.Errorf("%w: %s", ErrWordNotFound, name)
	}

	state := spaced_repetition.Grade(next[idx].ReviewState, knewIt, now)
	next[idx].ReviewState = &state
	if err := s.commit(ctx, next); err != nil {
		return models.WordRecord{}, err
	}
	return next[idx].Clone(), nil
}

func (s *Store) update(ctx context.Context, text string, fn func(*models.WordRecord)) (models.WordRecord, error) {
	word, err := Normalize(text)
	if err != nil {
		return models.WordRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return models.WordRecord{}, err
	}

	next := s.snapshot()
	first := -1
	for i := range next {
		if next[i].Word != word {
			continue
		}
		fn(&next[i])
		if first < 0 {
			first = i
		}
	}
	if first < 0 {
		return models.WordRecord{}, fmt.Errorf("%w: %s", ErrWordNotFound, word)
	}
	if err := s.commit(ctx, next); err != nil {
		return models.WordRecord{}, err
	}
	return next[first].Clone(), nil
}
