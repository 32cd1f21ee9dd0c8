package dialog

import (
	"sync"

	"github.com/ivankudzin/matefinder/internal/domain/enums"
)

// Step is the dialogue position a user currently occupies. The zero value
// means no dialogue is in progress.
type Step string

const (
	StepNone   Step = ""
	StepName   Step = "editing_name"
	StepAge    Step = "editing_age"
	StepGender Step = "editing_gender"
	StepBio    Step = "editing_bio"
	StepPhoto  Step = "editing_photo"
)

// Draft accumulates profile fields collected during the creation flow.
type Draft struct {
	Name    string
	Age     int
	Gender  enums.Gender
	Bio     string
	PhotoID *string
}

type state struct {
	step            Step
	draft           Draft
	lastCandidateID int64
}

// Store keeps per-user dialogue state. Updates are processed one at a time
// per user, but many distinct users interleave, so the map is mutex-guarded.
type Store struct {
	mu     sync.Mutex
	states map[int64]*state
}

func NewStore() *Store {
	return &Store{states: make(map[int64]*state)}
}

func (s *Store) Step(userID int64) Step {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.states[userID]
	if !ok {
		return StepNone
	}
	return entry.step
}

func (s *Store) SetStep(userID int64, step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entry(userID).step = step
}

func (s *Store) Draft(userID int64) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.states[userID]
	if !ok {
		return Draft{}
	}
	return entry.draft
}

func (s *Store) UpdateDraft(userID int64, update func(*Draft)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entry(userID)
	update(&entry.draft)
}

func (s *Store) SetLastCandidate(userID, candidateID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entry(userID).lastCandidateID = candidateID
}

func (s *Store) LastCandidate(userID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.states[userID]
	if !ok {
		return 0
	}
	return entry.lastCandidateID
}

// Clear drops all dialogue state for the user. It never touches storage, so
// cancelling mid-flow has no side effects on persisted data.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, userID)
}

func (s *Store) entry(userID int64) *state {
	entry, ok := s.states[userID]
	if !ok {
		entry = &state{}
		s.states[userID] = entry
	}
	return entry
}
