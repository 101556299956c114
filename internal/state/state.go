package state

import (
	"sync"
	"time"
)

type Phase int

const (
	IDLE Phase = iota
	COMPOSING
	UPLOADING
	DONE
	ERROR
)

func (p Phase) String() string {
	switch p {
	case IDLE:
		return "idle"
	case COMPOSING:
		return "composing"
	case UPLOADING:
		return "uploading"
	case DONE:
		return "done"
	case ERROR:
		return "error"
	default:
		return "unknown"
	}
}

// Progress counts pipeline work. Total is the number of images scheduled.
type Progress struct {
	Total    int
	Composed int
	Uploaded int
	Failed   int
	Current  string
}

type State struct {
	Phase     Phase
	Progress  Progress
	Folder    string
	LastError string
	Started   time.Time
	Finished  time.Time
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Phase: IDLE}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	if phase == DONE || phase == ERROR {
		store.state.Finished = time.Now()
	}
	store.mu.Unlock()
}

// Begin resets the store for a new run of total images.
func (store *Store) Begin(total int, folder string) {
	store.mu.Lock()
	store.state = State{
		Phase:    COMPOSING,
		Progress: Progress{Total: total},
		Folder:   folder,
		Started:  time.Now(),
	}
	store.mu.Unlock()
}

func (store *Store) SetCurrent(name string) {
	store.mu.Lock()
	store.state.Progress.Current = name
	store.mu.Unlock()
}

func (store *Store) AddComposed() {
	store.mu.Lock()
	store.state.Progress.Composed++
	store.mu.Unlock()
}

func (store *Store) AddUploaded() {
	store.mu.Lock()
	store.state.Progress.Uploaded++
	store.mu.Unlock()
}

// Fail records a per-item failure without ending the run.
func (store *Store) Fail(err error) {
	store.mu.Lock()
	store.state.Progress.Failed++
	if err != nil {
		store.state.LastError = err.Error()
	}
	store.mu.Unlock()
}

// Abort ends the run with a fatal error.
func (store *Store) Abort(err error) {
	store.mu.Lock()
	store.state.Phase = ERROR
	store.state.Finished = time.Now()
	if err != nil {
		store.state.LastError = err.Error()
	}
	store.mu.Unlock()
}
