package main

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS boards (
		id   text PRIMARY KEY,
		name text NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS columns (
		id       text PRIMARY KEY,
		board_id text NOT NULL REFERENCES boards (id),
		name     text NOT NULL,
		position integer NOT NULL,
		UNIQUE (board_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          text PRIMARY KEY,
		board_id    text NOT NULL REFERENCES boards (id),
		column_id   text NOT NULL REFERENCES columns (id),
		title       text NOT NULL,
		description text NOT NULL DEFAULT '',
		created_at  timestamptz NOT NULL DEFAULT now(),
		updated_at  timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_board_id_idx ON tasks (board_id)`,
}

type seedColumn struct {
	id       string
	name     string
	position int
}

type seedTask struct {
	id          string
	title       string
	description string
	columnID    string
}

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL must be set")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer conn.Close(ctx)

	for _, stmt := range schema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			log.Fatalf("schema: %v", err)
		}
	}
	log.Info("schema ready")

	boardID := "default-board"
	if _, err := conn.Exec(ctx,
		`INSERT INTO boards (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		boardID, "My Task Board"); err != nil {
		log.Fatalf("seed board: %v", err)
	}

	columns := []seedColumn{
		{id: "col-todo", name: "To Do", position: 0},
		{id: "col-in-progress", name: "In Progress", position: 1},
		{id: "col-done", name: "Done", position: 2},
	}
	for _, col := range columns {
		if _, err := conn.Exec(ctx,
			`INSERT INTO columns (id, board_id, name, position) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			col.id, boardID, col.name, col.position); err != nil {
			log.Fatalf("seed column %s: %v", col.id, err)
		}
	}

	tasks := []seedTask{
		{
			id:          "task-1",
			title:       "Setup project repository",
			description: "Initialize the repository and configure workspaces",
			columnID:    "col-done",
		},
		{
			id:          "task-2",
			title:       "Implement authentication",
			description: "Add JWT authentication with login endpoint",
			columnID:    "col-in-progress",
		},
		{
			id:          "task-3",
			title:       "Add drag and drop",
			description: "Integrate drag and drop for task board interactions",
			columnID:    "col-todo",
		},
	}
	for _, t := range tasks {
		if _, err := conn.Exec(ctx,
			`INSERT INTO tasks (id, board_id, column_id, title, description) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
			t.id, boardID, t.columnID, t.title, t.description); err != nil {
			log.Fatalf("seed task %s: %v", t.id, err)
		}
	}

	log.WithField("board", boardID).Info("seed completed")
}
