package client

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
)

// MoveState tracks a single move gesture through its lifecycle.
type MoveState int

const (
	StateIdle MoveState = iota
	StatePending
	StateConfirmed
	StateRolledBack
)

func (s MoveState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateRolledBack:
		return "rolledback"
	}
	return "unknown"
}

// Mover holds the locally rendered task list for one board and applies
// optimistic moves against it. The rendered list is provisional only while
// a move is pending; both the post-move refetch and the background poll
// carry server truth, and whichever response completes last wins.
type Mover struct {
	api      *Client
	boardID  string
	interval time.Duration
	render   func([]domain.Task)

	mu    sync.Mutex
	tasks []domain.Task
	state MoveState
}

// NewMover creates a move controller for the given board. render is invoked
// with every task list the controller decides to display; it may be nil.
func NewMover(api *Client, boardID string, render func([]domain.Task)) *Mover {
	return &Mover{
		api:      api,
		boardID:  boardID,
		interval: 5 * time.Second,
		render:   render,
		state:    StateIdle,
	}
}

// Tasks returns a copy of the currently rendered task list.
func (m *Mover) Tasks() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

// State reports the current gesture state.
func (m *Mover) State() MoveState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Refresh replaces the rendered list with the server's canonical list.
func (m *Mover) Refresh(ctx context.Context) error {
	tasks, err := m.api.GetTasks(ctx, m.boardID)
	if err != nil {
		return err
	}
	m.setTasks(tasks)
	return nil
}

// Move relocates taskID to toColumnID optimistically, sends the move
// request, then discards the optimistic list in favor of a fresh refetch
// whether the request succeeded or failed. The returned state is Confirmed
// or RolledBack; the controller is Idle again once Move returns. A gesture
// targeting an unknown task or the task's current column is a no-op.
func (m *Mover) Move(ctx context.Context, taskID, toColumnID string) (MoveState, error) {
	m.mu.Lock()
	optimistic := make([]domain.Task, len(m.tasks))
	copy(optimistic, m.tasks)
	found := false
	for i := range optimistic {
		if optimistic[i].ID != taskID {
			continue
		}
		if optimistic[i].ColumnID == toColumnID {
			m.mu.Unlock()
			return StateIdle, nil
		}
		optimistic[i].ColumnID = toColumnID
		found = true
		break
	}
	if !found {
		m.mu.Unlock()
		return StateIdle, nil
	}
	m.state = StatePending
	m.tasks = optimistic
	m.mu.Unlock()
	m.display(optimistic)

	_, moveErr := m.api.MoveTask(ctx, taskID, toColumnID)

	final := StateConfirmed
	if moveErr != nil {
		final = StateRolledBack
		log.WithError(moveErr).WithField("task", taskID).Warn("move rejected; reverting to canonical state")
	}
	m.transition(final)

	// Refetch instead of trusting the optimistic value or the move
	// response: the canonical list carries server-derived fields and any
	// concurrent changes made by other actors.
	if err := m.Refresh(ctx); err != nil {
		log.WithError(err).WithField("board", m.boardID).Warn("refetch after move failed")
	}
	m.transition(StateIdle)

	return final, moveErr
}

// Poll refetches the canonical task list every interval until ctx is
// cancelled, regardless of move activity. No sequence numbers are attached:
// a poll response that resolves after a move may overwrite the post-move
// view with equally valid, differently timed data.
func (m *Mover) Poll(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Refresh(ctx); err != nil {
				log.WithError(err).WithField("board", m.boardID).Debug("background refresh failed")
			}
		}
	}
}

func (m *Mover) transition(next MoveState) {
	m.mu.Lock()
	m.state = next
	m.mu.Unlock()
}

func (m *Mover) setTasks(tasks []domain.Task) {
	m.mu.Lock()
	m.tasks = tasks
	m.mu.Unlock()
	m.display(tasks)
}

func (m *Mover) display(tasks []domain.Task) {
	if m.render == nil {
		return
	}
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	m.render(out)
}
