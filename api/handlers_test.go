package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
)

type mockStore struct {
	boards []domain.Board
	board  domain.Board
	tasks  []domain.Task
	task   domain.Task
	err    error

	lastBoardID  string
	lastDraft    domain.TaskDraft
	lastTaskID   string
	lastColumnID string
}

func (m *mockStore) ListBoards(ctx context.Context) ([]domain.Board, error) {
	return m.boards, m.err
}

func (m *mockStore) FetchBoard(ctx context.Context, boardID string) (domain.Board, error) {
	m.lastBoardID = boardID
	return m.board, m.err
}

func (m *mockStore) FetchTasks(ctx context.Context, boardID string) ([]domain.Task, error) {
	m.lastBoardID = boardID
	return m.tasks, m.err
}

func (m *mockStore) CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	m.lastDraft = draft
	return m.task, m.err
}

func (m *mockStore) MoveTask(ctx context.Context, taskID, toColumnID string) (domain.Task, error) {
	m.lastTaskID = taskID
	m.lastColumnID = toColumnID
	return m.task, m.err
}

func newContext(t *testing.T, method, target string, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGetBoard(t *testing.T) {
	store := &mockStore{board: domain.Board{ID: "bd1", Name: "Board", Columns: []domain.Column{
		{ID: "todo", BoardID: "bd1", Name: "To Do", Position: 0},
	}}}
	c, rec := newContext(t, http.MethodGet, "/api/boards/bd1", "")
	c.SetParamNames("boardId")
	c.SetParamValues("bd1")

	if err := getBoard(store)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if store.lastBoardID != "bd1" {
		t.Fatalf("unexpected board id: %s", store.lastBoardID)
	}

	var board domain.Board
	if err := sonic.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if board.ID != "bd1" || len(board.Columns) != 1 {
		t.Fatalf("unexpected board: %#v", board)
	}
}

func TestGetBoardNotFound(t *testing.T) {
	store := &mockStore{err: domain.ErrNotFound}
	c, rec := newContext(t, http.MethodGet, "/api/boards/nope", "")
	c.SetParamNames("boardId")
	c.SetParamValues("nope")

	if err := getBoard(store)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetTasks(t *testing.T) {
	entered := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &mockStore{tasks: []domain.Task{{
		ID:        "t1",
		BoardID:   "bd1",
		ColumnID:  "doing",
		Title:     "Write code",
		EnteredAt: entered,
	}}}
	c, rec := newContext(t, http.MethodGet, "/api/tasks?boardId=bd1", "")

	if err := getTasks(store, log.New())(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if store.lastBoardID != "bd1" {
		t.Fatalf("unexpected board id: %s", store.lastBoardID)
	}

	var tasks []domain.Task
	if err := sonic.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(tasks) != 1 || !tasks[0].EnteredAt.Equal(entered) {
		t.Fatalf("unexpected tasks: %#v", tasks)
	}
}

func TestGetTasksRequiresBoardID(t *testing.T) {
	c, rec := newContext(t, http.MethodGet, "/api/tasks", "")

	if err := getTasks(&mockStore{}, log.New())(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetTasksUnknownBoard(t *testing.T) {
	store := &mockStore{err: domain.ErrNotFound}
	c, rec := newContext(t, http.MethodGet, "/api/tasks?boardId=nope", "")

	if err := getTasks(store, log.New())(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPostTask(t *testing.T) {
	created := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	store := &mockStore{task: domain.Task{
		ID:        "t1",
		BoardID:   "bd1",
		ColumnID:  "todo",
		Title:     "Write code",
		CreatedAt: created,
		EnteredAt: created,
	}}
	body := `{"title":"  Write code  ","description":"now","boardId":"bd1","columnId":"todo"}`
	c, rec := newContext(t, http.MethodPost, "/api/tasks", body)

	if err := postTask(store)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.lastDraft.Title != "Write code" {
		t.Fatalf("expected trimmed title, got %q", store.lastDraft.Title)
	}
	if store.lastDraft.BoardID != "bd1" || store.lastDraft.ColumnID != "todo" {
		t.Fatalf("unexpected draft: %#v", store.lastDraft)
	}

	var task domain.Task
	if err := sonic.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !task.EnteredAt.Equal(created) {
		t.Fatalf("expected enteredAt == createdAt, got %v", task.EnteredAt)
	}
}

func TestPostTaskValidation(t *testing.T) {
	cases := map[string]string{
		"invalid json":   `{"title":`,
		"unknown field":  `{"title":"t","boardId":"b","columnId":"c","bogus":1}`,
		"missing title":  `{"boardId":"b","columnId":"c"}`,
		"blank title":    `{"title":"   ","boardId":"b","columnId":"c"}`,
		"missing column": `{"title":"t","boardId":"b"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, rec := newContext(t, http.MethodPost, "/api/tasks", body)
			if err := postTask(&mockStore{})(c); err != nil {
				t.Fatalf("handler: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestPostTaskUnknownBoard(t *testing.T) {
	store := &mockStore{err: domain.ErrNotFound}
	body := `{"title":"t","boardId":"nope","columnId":"c"}`
	c, rec := newContext(t, http.MethodPost, "/api/tasks", body)

	if err := postTask(store)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMoveTask(t *testing.T) {
	moved := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	store := &mockStore{task: domain.Task{
		ID:        "t1",
		BoardID:   "bd1",
		ColumnID:  "doing",
		Title:     "Write code",
		UpdatedAt: moved,
		EnteredAt: moved,
	}}
	c, rec := newContext(t, http.MethodPatch, "/api/tasks/t1/move", `{"toColumnId":"doing"}`)
	c.SetParamNames("taskId")
	c.SetParamValues("t1")

	if err := moveTask(store)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.lastTaskID != "t1" || store.lastColumnID != "doing" {
		t.Fatalf("unexpected move args: %s -> %s", store.lastTaskID, store.lastColumnID)
	}

	var task domain.Task
	if err := sonic.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if task.ColumnID != "doing" || !task.EnteredAt.Equal(moved) {
		t.Fatalf("unexpected task: %#v", task)
	}
}

func TestMoveTaskNotFound(t *testing.T) {
	store := &mockStore{err: domain.ErrNotFound}
	c, rec := newContext(t, http.MethodPatch, "/api/tasks/nope/move", `{"toColumnId":"doing"}`)
	c.SetParamNames("taskId")
	c.SetParamValues("nope")

	if err := moveTask(store)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMoveTaskCrossBoardColumn(t *testing.T) {
	store := &mockStore{err: domain.ErrColumnBoardMismatch}
	c, rec := newContext(t, http.MethodPatch, "/api/tasks/t1/move", `{"toColumnId":"other"}`)
	c.SetParamNames("taskId")
	c.SetParamValues("t1")

	if err := moveTask(store)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestMoveTaskRequiresColumn(t *testing.T) {
	c, rec := newContext(t, http.MethodPatch, "/api/tasks/t1/move", `{}`)
	c.SetParamNames("taskId")
	c.SetParamValues("t1")

	if err := moveTask(&mockStore{})(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	c, rec := newContext(t, http.MethodGet, "/healthz", "")
	if err := healthz()(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
