package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"taskboard-api/domain"
)

// Client wraps http.Client with JSON helpers for the task-board API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a new Client for the given base URL.
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{}}
}

// APIError describes a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// GetBoards lists every board with its columns.
func (c *Client) GetBoards(ctx context.Context) ([]domain.Board, error) {
	var boards []domain.Board
	if err := c.do(ctx, http.MethodGet, "/api/boards", nil, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// GetBoard fetches a single board with its columns.
func (c *Client) GetBoard(ctx context.Context, boardID string) (domain.Board, error) {
	var board domain.Board
	if err := c.do(ctx, http.MethodGet, "/api/boards/"+url.PathEscape(boardID), nil, &board); err != nil {
		return domain.Board{}, err
	}
	return board, nil
}

// GetTasks fetches the task list for a board.
func (c *Client) GetTasks(ctx context.Context, boardID string) ([]domain.Task, error) {
	var tasks []domain.Task
	path := "/api/tasks?boardId=" + url.QueryEscape(boardID)
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task in the given board and column.
func (c *Client) CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	body := map[string]string{
		"title":    draft.Title,
		"boardId":  draft.BoardID,
		"columnId": draft.ColumnID,
	}
	if draft.Description != "" {
		body["description"] = draft.Description
	}
	var task domain.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", body, &task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// MoveTask relocates a task to the target column.
func (c *Client) MoveTask(ctx context.Context, taskID, toColumnID string) (domain.Task, error) {
	var task domain.Task
	path := "/api/tasks/" + url.PathEscape(taskID) + "/move"
	if err := c.do(ctx, http.MethodPatch, path, map[string]string{"toColumnId": toColumnID}, &task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return err
		}
		reader = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(msg))}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}
	return nil
}
