package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every API endpoint writes.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *AppError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta describes one page of a player list.
type Meta struct {
	Page       int   `json:"page,omitempty"`
	PerPage    int   `json:"per_page,omitempty"`
	Total      int64 `json:"total,omitempty"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// NewMeta describes page of a list holding total items, perPage at a time.
// TotalPages is zero for an empty list.
func NewMeta(page, perPage, total int) *Meta {
	m := &Meta{Page: page, PerPage: perPage, Total: int64(total)}
	if perPage > 0 {
		m.TotalPages = (total + perPage - 1) / perPage
	}
	return m
}

var statusByCode = map[string]int{
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeInvalidFilterSpec: http.StatusBadRequest,
	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeForbidden:         http.StatusForbidden,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeConflict:          http.StatusConflict,
	ErrCodeBudgetExceeded:    http.StatusConflict,
	ErrCodeInvalidSelection:  http.StatusConflict,
	ErrCodeUnavailable:       http.StatusServiceUnavailable,
	ErrCodeInternal:          http.StatusInternalServerError,
}

// StatusFor returns the HTTP status an error code is sent with.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func SendCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// SendList writes a list with its paging metadata.
func SendList(c *gin.Context, items interface{}, meta *Meta) {
	c.JSON(http.StatusOK, Response{Success: true, Data: items, Meta: meta})
}

func SendError(c *gin.Context, statusCode int, err *AppError) {
	c.JSON(statusCode, Response{Success: false, Error: err})
}

// SendAppError writes err with the status its code maps to.
func SendAppError(c *gin.Context, err *AppError) {
	SendError(c, err.Status(), err)
}

// SendCode writes an error whose status follows from its code.
func SendCode(c *gin.Context, code, message string, details ...string) {
	SendAppError(c, NewAppError(code, message, details...))
}

func SendValidationError(c *gin.Context, message string, details string) {
	SendCode(c, ErrCodeValidation, message, details)
}

func SendNotFound(c *gin.Context, message string) {
	SendCode(c, ErrCodeNotFound, message)
}

func SendUnauthorized(c *gin.Context, message string) {
	SendCode(c, ErrCodeUnauthorized, message)
}

func SendForbidden(c *gin.Context, message string) {
	SendCode(c, ErrCodeForbidden, message)
}

func SendInternalError(c *gin.Context, message string) {
	SendCode(c, ErrCodeInternal, message)
}

func SendUnavailable(c *gin.Context, message string) {
	SendCode(c, ErrCodeUnavailable, message)
}
