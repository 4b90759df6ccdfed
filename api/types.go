package api

import (
	"context"

	"taskboard-api/domain"
)

// Storage abstracts the cached persistence layer for handlers.
type Storage interface {
	ListBoards(ctx context.Context) ([]domain.Board, error)
	FetchBoard(ctx context.Context, boardID string) (domain.Board, error)
	FetchTasks(ctx context.Context, boardID string) ([]domain.Task, error)
	CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error)
	MoveTask(ctx context.Context, taskID, toColumnID string) (domain.Task, error)
}
