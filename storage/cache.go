package storage

import (
	"context"
	"encoding/json"
	"time"

	"taskboard-api/domain"
)

// DefaultTTL bounds how stale a cached view may be relative to the durable
// store.
const DefaultTTL = 30 * time.Second

type backend interface {
	ListBoards(ctx context.Context) ([]domain.Board, error)
	FetchBoard(ctx context.Context, boardID string) (domain.Board, error)
	FetchTasks(ctx context.Context, boardID string) ([]domain.Task, error)
	InsertTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error)
	MoveTask(ctx context.Context, taskID, toColumnID string) (domain.Task, error)
}

// Cache wraps the durable store with Redis-backed read-through caching for
// the board and task-list views and evicts both keys whenever a task on the
// board mutates. Concurrent misses on the same key each refetch and
// repopulate independently; all of them land on equivalent values.
type Cache struct {
	base  backend
	cache *RedisCache
	ttl   time.Duration
}

// NewCache creates a caching wrapper over the durable store using the
// provided cache store and TTL.
func NewCache(base backend, cache *RedisCache, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{base: base, cache: cache, ttl: ttl}
}

// ListBoards bypasses the cache; the board index is not a cached view.
func (c *Cache) ListBoards(ctx context.Context) ([]domain.Board, error) {
	return c.base.ListBoards(ctx)
}

// FetchBoard serves the board-with-columns view, which may be up to TTL
// stale relative to the durable store. NotFound is never cached.
func (c *Cache) FetchBoard(ctx context.Context, boardID string) (domain.Board, error) {
	key := boardCacheKey(boardID)
	if data, ok := c.cache.Get(ctx, key); ok {
		var board domain.Board
		if err := json.Unmarshal(data, &board); err == nil {
			return board, nil
		}
		c.cache.Delete(ctx, key)
	}

	board, err := c.base.FetchBoard(ctx, boardID)
	if err != nil {
		return domain.Board{}, err
	}
	c.store(ctx, key, board)
	return board, nil
}

// FetchTasks serves the task-list view with every task annotated with the
// time it entered its current column.
func (c *Cache) FetchTasks(ctx context.Context, boardID string) ([]domain.Task, error) {
	key := tasksCacheKey(boardID)
	if data, ok := c.cache.Get(ctx, key); ok {
		var tasks []domain.Task
		if err := json.Unmarshal(data, &tasks); err == nil {
			return tasks, nil
		}
		c.cache.Delete(ctx, key)
	}

	tasks, err := c.base.FetchTasks(ctx, boardID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		// Last-modification time stands in for column-entry time; only
		// moves touch updated_at in this API.
		tasks[i].EnteredAt = tasks[i].UpdatedAt
	}
	c.store(ctx, key, tasks)
	return tasks, nil
}

// CreateTask inserts the task and invalidates both cached views for its
// board. The write stands even when invalidation fails; a stale entry
// self-corrects at its next TTL expiry.
func (c *Cache) CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	task, err := c.base.InsertTask(ctx, draft)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx, task.BoardID)
	task.EnteredAt = task.CreatedAt
	return task, nil
}

// MoveTask updates the task's column assignment and invalidates both cached
// views for its board.
func (c *Cache) MoveTask(ctx context.Context, taskID, toColumnID string) (domain.Task, error) {
	task, err := c.base.MoveTask(ctx, taskID, toColumnID)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx, task.BoardID)
	task.EnteredAt = task.UpdatedAt
	return task, nil
}

func (c *Cache) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.cache.Set(ctx, key, data, c.ttl)
}

// evict deletes the two exact keys derived from the board id rather than
// scanning a prefix; the dependent key set is fully enumerable.
func (c *Cache) evict(ctx context.Context, boardID string) {
	c.cache.Delete(ctx, tasksCacheKey(boardID), boardCacheKey(boardID))
}

func boardCacheKey(boardID string) string {
	return "board:" + boardID
}

func tasksCacheKey(boardID string) string {
	return "tasks:board:" + boardID
}
