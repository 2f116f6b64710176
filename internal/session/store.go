// Package session holds the per-session in-memory state: parsed file
// profiles, staged cleaning selections, and the per-file pipeline status.
// All mutation happens through whole-value replacement under the store lock,
// so no partially-updated profile is ever observable.
package session

import (
	"sort"
	"sync"

	"daxforge/domain/cleaning"
	"daxforge/domain/core"
	"daxforge/domain/profile"
	internalcleaning "daxforge/internal/cleaning"
)

// FileStatus is the pipeline state of one ingested file
type FileStatus string

const (
	StatusPending         FileStatus = "pending"
	StatusProfiling       FileStatus = "profiling"
	StatusInsightsPending FileStatus = "insights_pending"
	StatusComplete        FileStatus = "complete"
	StatusError           FileStatus = "error"
)

// FileState tracks one file's pipeline progress and profile
type FileState struct {
	ID         core.FileID           `json:"id"`
	Name       string                `json:"name"`
	Status     FileStatus            `json:"status"`
	Error      string                `json:"error,omitempty"`
	Profile    *profile.FileProfile  `json:"profile,omitempty"`
	Selections cleaning.SelectionSet `json:"-"`
	UploadedAt core.Timestamp        `json:"uploaded_at"`
}

// Session owns the profiles created within it; removing the session removes
// its files.
type Session struct {
	ID        core.SessionID            `json:"id"`
	Files     map[core.FileID]*FileState `json:"-"`
	FileOrder []core.FileID             `json:"-"`
	CreatedAt core.Timestamp            `json:"created_at"`
}

// Store is the in-memory session registry
type Store struct {
	mu        sync.RWMutex
	sessions  map[core.SessionID]*Session
	simulator *internalcleaning.Simulator
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{
		sessions:  make(map[core.SessionID]*Session),
		simulator: internalcleaning.NewSimulator(),
	}
}

// CreateSession registers a new session and returns it
func (s *Store) CreateSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		ID:        core.SessionID(core.NewID()),
		Files:     make(map[core.FileID]*FileState),
		CreatedAt: core.Now(),
	}
	s.sessions[sess.ID] = sess
	return sess
}

// EnsureSession returns the session with the given ID, creating it when the
// ID is unknown. The wizard frontend generates its session ID on first load.
func (s *Store) EnsureSession(id core.SessionID) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := &Session{
		ID:        id,
		Files:     make(map[core.FileID]*FileState),
		CreatedAt: core.Now(),
	}
	s.sessions[id] = sess
	return sess
}

// RemoveSession deletes a session and all profiles it owns
func (s *Store) RemoveSession(id core.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// AddFile registers a pending file pipeline and returns its ID
func (s *Store) AddFile(sessionID core.SessionID, name string) (core.FileID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return "", core.ErrSessionNotFound
	}

	state := &FileState{
		ID:         core.FileID(core.NewID()),
		Name:       name,
		Status:     StatusPending,
		Selections: make(cleaning.SelectionSet),
		UploadedAt: core.Now(),
	}
	sess.Files[state.ID] = state
	sess.FileOrder = append(sess.FileOrder, state.ID)
	return state.ID, nil
}

// RemoveFile deletes one file and its profile from the session
func (s *Store) RemoveFile(sessionID core.SessionID, fileID core.FileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return core.ErrSessionNotFound
	}
	if _, ok := sess.Files[fileID]; !ok {
		return core.ErrFileNotFound
	}
	delete(sess.Files, fileID)
	for i, id := range sess.FileOrder {
		if id == fileID {
			sess.FileOrder = append(sess.FileOrder[:i], sess.FileOrder[i+1:]...)
			break
		}
	}
	return nil
}

// SetStatus transitions one file pipeline, recording the error message for
// error states
func (s *Store) SetStatus(sessionID core.SessionID, fileID core.FileID, status FileStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.fileStateLocked(sessionID, fileID)
	if err != nil {
		return err
	}
	state.Status = status
	state.Error = errMsg
	return nil
}

// SetProfile commits a freshly built profile for a file
func (s *Store) SetProfile(sessionID core.SessionID, fileID core.FileID, p *profile.FileProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.fileStateLocked(sessionID, fileID)
	if err != nil {
		return err
	}
	state.Profile = p
	return nil
}

// AttachInsights decorates the profile with collaborator insights, but only
// when the profile version still matches the version the request targeted.
// A false return means the response was stale and has been dropped.
func (s *Store) AttachInsights(sessionID core.SessionID, fileID core.FileID, targetVersion int, insights *profile.AIInsights) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.fileStateLocked(sessionID, fileID)
	if err != nil {
		return false, err
	}
	if state.Profile == nil || state.Profile.Version != targetVersion {
		return false, nil
	}
	updated := state.Profile.Clone()
	updated.AIInsights = insights
	// Decoration, not a reshape: the version is unchanged so pending
	// requests against the same profile stay valid.
	state.Profile = updated
	return true, nil
}

// Profile returns a deep copy of one file's profile
func (s *Store) Profile(sessionID core.SessionID, fileID core.FileID) (*profile.FileProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, err := s.fileStateLocked(sessionID, fileID)
	if err != nil {
		return nil, err
	}
	if state.Profile == nil {
		return nil, core.ErrProfileNotFound
	}
	return state.Profile.Clone(), nil
}

// Profiles returns deep copies of all completed profiles in upload order
func (s *Store) Profiles(sessionID core.SessionID) ([]*profile.FileProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, core.ErrSessionNotFound
	}

	profiles := make([]*profile.FileProfile, 0, len(sess.FileOrder))
	for _, id := range sess.FileOrder {
		if state := sess.Files[id]; state != nil && state.Profile != nil {
			profiles = append(profiles, state.Profile.Clone())
		}
	}
	return profiles, nil
}

// FileStates returns a snapshot of all file pipelines in upload order
func (s *Store) FileStates(sessionID core.SessionID) ([]FileState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, core.ErrSessionNotFound
	}

	states := make([]FileState, 0, len(sess.FileOrder))
	for _, id := range sess.FileOrder {
		if state := sess.Files[id]; state != nil {
			snapshot := *state
			snapshot.Profile = state.Profile.Clone()
			snapshot.Selections = state.Selections.Clone()
			states = append(states, snapshot)
		}
	}
	return states, nil
}

// StageSelection stages a cleaning action for one column, replacing any
// prior selection for that column
func (s *Store) StageSelection(sessionID core.SessionID, fileID core.FileID, column string, action cleaning.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.fileStateLocked(sessionID, fileID)
	if err != nil {
		return err
	}
	if state.Profile == nil {
		return core.ErrFileNotReady
	}
	state.Selections[column] = action
	return nil
}

// UnstageSelection removes the staged selection for one column
func (s *Store) UnstageSelection(sessionID core.SessionID, fileID core.FileID, column string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.fileStateLocked(sessionID, fileID)
	if err != nil {
		return err
	}
	delete(state.Selections, column)
	return nil
}

// Selections returns the staged selection kinds per column, sorted by column
func (s *Store) Selections(sessionID core.SessionID, fileID core.FileID) (map[string]cleaning.ActionKind, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, err := s.fileStateLocked(sessionID, fileID)
	if err != nil {
		return nil, err
	}
	kinds := make(map[string]cleaning.ActionKind, len(state.Selections))
	for col, action := range state.Selections {
		kinds[col] = action.Kind()
	}
	return kinds, nil
}

// ApplyCleaning runs the simulator over the staged selections, commits the
// replacement profile in one step, and clears the staged set. The apply is
// atomic from the caller's perspective.
func (s *Store) ApplyCleaning(sessionID core.SessionID, fileID core.FileID) (*profile.FileProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.fileStateLocked(sessionID, fileID)
	if err != nil {
		return nil, err
	}
	if state.Profile == nil {
		return nil, core.ErrProfileNotFound
	}

	updated := s.simulator.Apply(state.Profile, state.Selections)
	state.Profile = updated
	state.Selections = make(cleaning.SelectionSet)
	return updated.Clone(), nil
}

// SessionIDs returns all known session IDs, sorted
func (s *Store) SessionIDs() []core.SessionID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]core.SessionID, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// fileStateLocked looks up a file state; callers must hold the lock
func (s *Store) fileStateLocked(sessionID core.SessionID, fileID core.FileID) (*FileState, error) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	state, ok := sess.Files[fileID]
	if !ok {
		return nil, core.ErrFileNotFound
	}
	return state, nil
}
