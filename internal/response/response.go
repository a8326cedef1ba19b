package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope every endpoint answers with.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      string      `json:"error,omitempty"`
	Stack      string      `json:"stack,omitempty"`
}

// Pagination echoes the parsed paging values back to the caller.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// OK writes a 200 with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// OKMessage writes a 200 with a message and optional data.
func OKMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Created writes a 201 with a message and data.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// Paginated writes a 200 with data and pagination metadata.
func Paginated(c *gin.Context, data interface{}, page, limit int) {
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       data,
		Pagination: &Pagination{Page: page, Limit: limit},
	})
}

// Fail writes an error envelope with the given status.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}
