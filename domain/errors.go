package domain

import "errors"

var (
	// ErrNotFound indicates the requested board, column or task has no row
	// in the durable store.
	ErrNotFound = errors.New("not found")

	// ErrColumnBoardMismatch indicates a move targeting a column that
	// belongs to a different board than the task.
	ErrColumnBoardMismatch = errors.New("target column belongs to a different board")
)
