package domain

// Column is a single lane on a board. Position defines display order and is
// unique within the board.
type Column struct {
	ID       string `json:"id"`
	BoardID  string `json:"boardId"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Board aggregates its columns, ordered by ascending position.
type Board struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}
