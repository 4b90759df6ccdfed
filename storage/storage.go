package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskboard-api/domain"
)

// PostgreSQL foreign key violation error code.
const fkViolationCode = "23503"

// Storage provides access to the durable relational store.
type Storage struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// New opens a connection pool for the given DSN and verifies connectivity.
// The caller owns the returned Storage and must Close it at shutdown.
func New(ctx context.Context, dsn string) (*Storage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Storage{pool: pool, now: time.Now}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() {
	s.pool.Close()
}

// ListBoards returns every board with its columns in display order.
func (s *Storage) ListBoards(ctx context.Context) ([]domain.Board, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM boards ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	boards := []domain.Board{}
	index := map[string]int{}
	for rows.Next() {
		var b domain.Board
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		b.Columns = []domain.Column{}
		index[b.ID] = len(boards)
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}

	crows, err := s.pool.Query(ctx, `SELECT id, board_id, name, position FROM columns ORDER BY board_id ASC, position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var col domain.Column
		if err := crows.Scan(&col.ID, &col.BoardID, &col.Name, &col.Position); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		if i, ok := index[col.BoardID]; ok {
			boards[i].Columns = append(boards[i].Columns, col)
		}
	}
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	return boards, nil
}

// FetchBoard returns the board with its columns ordered by ascending
// position, or domain.ErrNotFound when no such board exists.
func (s *Storage) FetchBoard(ctx context.Context, boardID string) (domain.Board, error) {
	var b domain.Board
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM boards WHERE id = $1`, boardID).Scan(&b.ID, &b.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Board{}, domain.ErrNotFound
		}
		return domain.Board{}, fmt.Errorf("fetch board: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT id, board_id, name, position FROM columns WHERE board_id = $1 ORDER BY position ASC`, boardID)
	if err != nil {
		return domain.Board{}, fmt.Errorf("fetch columns: %w", err)
	}
	defer rows.Close()

	b.Columns = []domain.Column{}
	for rows.Next() {
		var col domain.Column
		if err := rows.Scan(&col.ID, &col.BoardID, &col.Name, &col.Position); err != nil {
			return domain.Board{}, fmt.Errorf("scan column: %w", err)
		}
		b.Columns = append(b.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return domain.Board{}, fmt.Errorf("fetch columns: %w", err)
	}
	return b, nil
}

// FetchTasks returns every task on the board, newest first. An unknown
// board yields domain.ErrNotFound rather than an empty list.
func (s *Storage) FetchTasks(ctx context.Context, boardID string) ([]domain.Task, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM boards WHERE id = $1)`, boardID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check board: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	rows, err := s.pool.Query(ctx, `SELECT id, board_id, column_id, title, description, created_at, updated_at FROM tasks WHERE board_id = $1 ORDER BY created_at DESC`, boardID)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.BoardID, &t.ColumnID, &t.Title, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	return tasks, nil
}

// InsertTask writes a new task row. A reference to a board or column that
// does not exist surfaces as domain.ErrNotFound.
func (s *Storage) InsertTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	now := s.now().UTC()
	t := domain.Task{
		ID:          uuid.NewString(),
		BoardID:     draft.BoardID,
		ColumnID:    draft.ColumnID,
		Title:       draft.Title,
		Description: draft.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tasks (id, board_id, column_id, title, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.BoardID, t.ColumnID, t.Title, t.Description, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolationCode {
			return domain.Task{}, domain.ErrNotFound
		}
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// MoveTask reassigns the task to the target column and bumps updated_at.
// The target column must belong to the task's board; a cross-board target
// fails with domain.ErrColumnBoardMismatch before any write happens.
func (s *Storage) MoveTask(ctx context.Context, taskID, toColumnID string) (domain.Task, error) {
	var t domain.Task
	err := s.pool.QueryRow(ctx, `SELECT id, board_id, column_id, title, description, created_at, updated_at FROM tasks WHERE id = $1`, taskID).
		Scan(&t.ID, &t.BoardID, &t.ColumnID, &t.Title, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, domain.ErrNotFound
		}
		return domain.Task{}, fmt.Errorf("fetch task: %w", err)
	}

	var columnBoard string
	err = s.pool.QueryRow(ctx, `SELECT board_id FROM columns WHERE id = $1`, toColumnID).Scan(&columnBoard)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, domain.ErrNotFound
		}
		return domain.Task{}, fmt.Errorf("fetch target column: %w", err)
	}
	if columnBoard != t.BoardID {
		return domain.Task{}, domain.ErrColumnBoardMismatch
	}

	now := s.now().UTC()
	if _, err := s.pool.Exec(ctx, `UPDATE tasks SET column_id = $1, updated_at = $2 WHERE id = $3`, toColumnID, now, taskID); err != nil {
		return domain.Task{}, fmt.Errorf("move task: %w", err)
	}
	t.ColumnID = toColumnID
	t.UpdatedAt = now
	return t, nil
}
