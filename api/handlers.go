package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
)

const requestBodyMaxSize = 64 * 1024

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, logger *log.Logger) {
	e.GET("/api/boards", getBoards(store))
	e.GET("/api/boards/:boardId", getBoard(store))
	e.GET("/api/tasks", getTasks(store, logger))
	e.POST("/api/tasks", postTask(store))
	e.PATCH("/api/tasks/:taskId/move", moveTask(store))
	e.GET("/healthz", healthz())
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	BoardID     string `json:"boardId"`
	ColumnID    string `json:"columnId"`
}

type moveTaskRequest struct {
	ToColumnID string `json:"toColumnId"`
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getBoards(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		boards, err := store.ListBoards(c.Request().Context())
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "failed to list boards")
		}
		return c.JSON(http.StatusOK, boards)
	}
}

func getBoard(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		board, err := store.FetchBoard(c.Request().Context(), c.Param("boardId"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.String(http.StatusNotFound, "board not found")
			}
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "failed to fetch board")
		}
		return c.JSON(http.StatusOK, board)
	}
}

func getTasks(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newTaskRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		boardID := strings.TrimSpace(c.QueryParam("boardId"))
		if boardID == "" {
			metrics.SetErrorStage("missing_board_id")
			err = c.String(http.StatusBadRequest, "boardId is required")
			return err
		}

		fetchStart := time.Now()
		tasks, fetchErr := store.FetchTasks(ctx, boardID)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			if errors.Is(fetchErr, domain.ErrNotFound) {
				metrics.SetErrorStage("board_not_found")
				err = c.String(http.StatusNotFound, "board not found")
				return err
			}
			metrics.SetErrorStage("storage")
			c.Logger().Error(fetchErr)
			err = c.String(http.StatusInternalServerError, "failed to fetch tasks")
			return err
		}
		metrics.SetTasksReturned(len(tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasks)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func postTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		dec.DisallowUnknownFields()

		var req createTaskRequest
		if err := dec.Decode(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if strings.TrimSpace(req.Title) == "" || req.BoardID == "" || req.ColumnID == "" {
			return c.String(http.StatusBadRequest, "title, boardId and columnId are required")
		}

		task, err := store.CreateTask(c.Request().Context(), domain.TaskDraft{
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			BoardID:     req.BoardID,
			ColumnID:    req.ColumnID,
		})
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.String(http.StatusNotFound, "board or column not found")
			}
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "failed to create task")
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func moveTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		dec.DisallowUnknownFields()

		var req moveTaskRequest
		if err := dec.Decode(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if req.ToColumnID == "" {
			return c.String(http.StatusBadRequest, "toColumnId is required")
		}

		task, err := store.MoveTask(c.Request().Context(), c.Param("taskId"), req.ToColumnID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return c.String(http.StatusNotFound, "task or column not found")
			case errors.Is(err, domain.ErrColumnBoardMismatch):
				return c.String(http.StatusUnprocessableEntity, err.Error())
			}
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "failed to move task")
		}
		return c.JSON(http.StatusOK, task)
	}
}
