package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskboard-api/domain"
)

func TestClientGetTasksBuildsQuery(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("boardId")
		_ = json.NewEncoder(w).Encode([]domain.Task{{ID: "t1", BoardID: "bd 1"}})
	}))
	t.Cleanup(srv.Close)

	tasks, err := New(srv.URL).GetTasks(context.Background(), "bd 1")
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	if gotPath != "/api/tasks" || gotQuery != "bd 1" {
		t.Fatalf("unexpected request %s?boardId=%s", gotPath, gotQuery)
	}
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestClientCreateTaskSendsJSONBody(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.Task{ID: "t-new", Title: body["title"]})
	}))
	t.Cleanup(srv.Close)

	task, err := New(srv.URL).CreateTask(context.Background(), domain.TaskDraft{
		Title:    "Write release notes",
		BoardID:  "bd1",
		ColumnID: "todo",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ID != "t-new" {
		t.Fatalf("unexpected task: %+v", task)
	}
	if body["title"] != "Write release notes" || body["boardId"] != "bd1" || body["columnId"] != "todo" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, present := body["description"]; present {
		t.Fatal("empty description must be omitted from the body")
	}
}

func TestClientMoveTaskEscapesPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_ = json.NewEncoder(w).Encode(domain.Task{ID: "a/b", ColumnID: "doing"})
	}))
	t.Cleanup(srv.Close)

	task, err := New(srv.URL).MoveTask(context.Background(), "a/b", "doing")
	if err != nil {
		t.Fatalf("move task: %v", err)
	}
	if gotPath != "/api/tasks/a%2Fb/move" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if task.ColumnID != "doing" {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestClientSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "board not found", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL).GetBoard(context.Background(), "ghost")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "board not found" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
}

func TestClientGetBoards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/boards" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]domain.Board{{
			ID:      "bd1",
			Name:    "My Task Board",
			Columns: []domain.Column{{ID: "todo", BoardID: "bd1", Name: "To Do"}},
		}})
	}))
	t.Cleanup(srv.Close)

	boards, err := New(srv.URL).GetBoards(context.Background())
	if err != nil {
		t.Fatalf("get boards: %v", err)
	}
	if len(boards) != 1 || len(boards[0].Columns) != 1 {
		t.Fatalf("unexpected boards: %+v", boards)
	}
}
