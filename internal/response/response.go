package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roomly/service-booking/internal/domain"
)

// envelope is the JSON body shape shared by all endpoints.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errBody    `json:"error,omitempty"`
}

type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type pageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Success writes a 200 response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with a page of items and paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       items,
		"pagination": pageMeta{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 response with a validation message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Error:   &errBody{Code: string(domain.CodeValidation), Message: message},
	})
}

// Error maps a domain error to its HTTP status; unknown errors become 500
// without leaking internals.
func Error(c *gin.Context, err error) {
	if appErr, ok := domain.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus(), envelope{
			Success: false,
			Error:   &errBody{Code: string(appErr.Code), Message: appErr.Message},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, envelope{
		Success: false,
		Error:   &errBody{Code: string(domain.CodeInternal), Message: "internal server error"},
	})
}
