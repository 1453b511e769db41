// Package session tracks in-progress multi-step admin operations. State
// lives in memory only and is lost on restart.
package session

import (
	"sync"

	"github.com/arashpm/uploadmaster/internal/models"
)

// ChannelStep is the explicit position in the channel-registration flow.
// Fields are filled in strict order: ID, then name, then invite link.
type ChannelStep int

const (
	StepChannelID ChannelStep = iota
	StepChannelName
	StepInviteLink
	StepDone
)

// PendingUpload is an upload batch in progress for one admin. At most one
// exists per user; starting a new one replaces it wholesale.
type PendingUpload struct {
	CategoryID string
	Files      []models.File
}

// PendingChannel is a channel registration partially filled across
// sequential text messages.
type PendingChannel struct {
	Step        ChannelStep
	ChannelID   string
	ChannelName string
	InviteLink  string
}

// Store maps admin user IDs to their in-progress operations. The update
// loop is sequential today; the mutex is the per-user exclusion any
// parallel handler dispatch would need.
type Store struct {
	mu       sync.Mutex
	uploads  map[int64]*PendingUpload
	channels map[int64]*PendingChannel
}

func NewStore() *Store {
	return &Store{
		uploads:  make(map[int64]*PendingUpload),
		channels: make(map[int64]*PendingChannel),
	}
}

// StartUpload begins collecting files for a category. Any upload already
// in progress for the user is silently replaced, accumulated files
// discarded.
func (s *Store) StartUpload(userID int64, categoryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[userID] = &PendingUpload{CategoryID: categoryID}
}

// Upload returns a copy of the user's in-progress upload, if any.
func (s *Store) Upload(userID int64) (PendingUpload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	up, ok := s.uploads[userID]
	if !ok {
		return PendingUpload{}, false
	}
	return *up, true
}

// AppendFile adds a file to the user's in-progress upload and returns the
// accumulated count.
func (s *Store) AppendFile(userID int64, file models.File) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	up, ok := s.uploads[userID]
	if !ok {
		return 0, false
	}
	up.Files = append(up.Files, file)
	return len(up.Files), true
}

// FinishUpload removes and returns the user's in-progress upload.
func (s *Store) FinishUpload(userID int64) (PendingUpload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	up, ok := s.uploads[userID]
	if !ok {
		return PendingUpload{}, false
	}
	delete(s.uploads, userID)
	return *up, true
}

// StartChannel begins a channel registration for the user.
func (s *Store) StartChannel(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[userID] = &PendingChannel{Step: StepChannelID}
}

// Channel returns a copy of the user's in-progress channel registration.
func (s *Store) Channel(userID int64) (PendingChannel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pc, ok := s.channels[userID]
	if !ok {
		return PendingChannel{}, false
	}
	return *pc, true
}

// AdvanceChannel fills the next field in order with value and moves the
// flow forward. The returned copy is at StepDone once all three fields
// are collected; the caller then persists and clears.
func (s *Store) AdvanceChannel(userID int64, value string) (PendingChannel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pc, ok := s.channels[userID]
	if !ok {
		return PendingChannel{}, false
	}
	switch pc.Step {
	case StepChannelID:
		pc.ChannelID = value
		pc.Step = StepChannelName
	case StepChannelName:
		pc.ChannelName = value
		pc.Step = StepInviteLink
	case StepInviteLink:
		pc.InviteLink = value
		pc.Step = StepDone
	}
	return *pc, true
}

// ClearChannel discards the user's channel registration.
func (s *Store) ClearChannel(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.channels, userID)
}

// CancelAll discards every pending operation for the user and reports
// whether there was anything to discard.
func (s *Store) CancelAll(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, hadUpload := s.uploads[userID]
	_, hadChannel := s.channels[userID]
	delete(s.uploads, userID)
	delete(s.channels, userID)
	return hadUpload || hadChannel
}
