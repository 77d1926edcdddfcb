// Package review drives one pass over a batch of words picked for review.
package review

import (
	"context"
	"fmt"

	"github.com/example/vocabmaster/internal/apperrors"
	"github.com/example/vocabmaster/pkg/models"
	"github.com/google/uuid"
)

// State is the position of a session in its lifecycle
type State int

const (
	Empty State = iota
	Presenting
	Completed
	NoWordsAvailable
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Presenting:
		return "presenting"
	case Completed:
		return "completed"
	case NoWordsAvailable:
		return "no_words_available"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Grader persists the outcome of one answer for the given record
type Grader interface {
	GradeWord(ctx context.Context, record models.WordRecord, knewIt bool) (models.ReviewState, error)
}

// Result is one graded answer
type Result struct {
	Word   string
	KnewIt bool
	State  models.ReviewState
}

// Session presents a batch word by word and grades each answer.
// A Session is not safe for concurrent use.
type Session struct {
	ID      uuid.UUID
	grader  Grader
	state   State
	batch   []models.WordRecord
	index   int
	results []Result
}

// NewSession creates an empty session grading through grader
func NewSession(grader Grader) *Session {
	return &Session{
		ID:     uuid.New(),
		grader: grader,
		state:  Empty,
	}
}

// Start begins presenting batch from its first word.
// Calling Start on a session in progress abandons the ungraded remainder.
func (s *Session) Start(batch []models.WordRecord) State {
	s.batch = append([]models.WordRecord(nil), batch...)
	s.index = 0
	s.results = nil
	if len(s.batch) == 0 {
		s.state = NoWordsAvailable
	} else {
		s.state = Presenting
	}
	return s.state
}

// Respond grades the current word and advances.
// The index stays put when grading fails so the answer can be retried.
func (s *Session) Respond(ctx context.Context, knewIt bool) (Result, error) {
	if s.state != Presenting {
		return Result{}, &apperrors.InvalidStateError{Op: "respond", State: s.state.String()}
	}

	record := s.batch[s.index]
	state, err := s.grader.GradeWord(ctx, record, knewIt)
	if err != nil {
		return Result{}, fmt.Errorf("failed to grade %q: %w", record.Word, err)
	}

	res := Result{Word: record.Word, KnewIt: knewIt, State: state}
	s.results = append(s.results, res)
	s.index++
	if s.index >= len(s.batch) {
		s.state = Completed
	}
	return res, nil
}

// Current returns the word being presented
func (s *Session) Current() (models.WordRecord, bool) {
	if s.state != Presenting {
		return models.WordRecord{}, false
	}
	return s.batch[s.index].Clone(), true
}

func (s *Session) State() State { return s.state }

// Index is the zero-based position of the current word
func (s *Session) Index() int { return s.index }

func (s *Session) Len() int { return len(s.batch) }

// Results returns the answers graded so far
func (s *Session) Results() []Result {
	return append([]Result(nil), s.results...)
}
