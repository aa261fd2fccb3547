package httpresp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/agent-crm/internal/session"
)

type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

type PageResponse[T any] struct {
	Data  []T   `json:"data"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// PageDoc is what a browser route renders: the page name, its data and
// the flashes popped from the session.
type PageDoc struct {
	Page    string          `json:"page"`
	Data    any             `json:"data,omitempty"`
	Flashes []session.Flash `json:"flashes"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func List[T any](c *gin.Context, data []T) {
	c.JSON(http.StatusOK, ListResponse[T]{
		Data:  data,
		Total: len(data),
	})
}

func Page[T any](c *gin.Context, data []T, page, limit int, total int64) {
	c.JSON(http.StatusOK, PageResponse[T]{
		Data:  data,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func Render(c *gin.Context, page string, data any, flashes []session.Flash) {
	if flashes == nil {
		flashes = []session.Flash{}
	}
	c.JSON(http.StatusOK, PageDoc{Page: page, Data: data, Flashes: flashes})
}
