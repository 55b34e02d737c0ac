package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/academia-moderation/internal/model"
)

type envelope struct {
	Success bool               `json:"success"`
	Data    any                `json:"data,omitempty"`
	Message string             `json:"message,omitempty"`
	Errors  []model.FieldError `json:"errors,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message})
}

// respondError writes err using the status of its kind. Messages of
// unclassified failures are never sent to the client.
func respondError(c *gin.Context, err error) {
	var e *model.Error
	if !errors.As(err, &e) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, envelope{Message: "internal server error"})
		return
	}

	code := statusOf(e.Kind)
	message := e.Message
	if code == http.StatusInternalServerError {
		message = "internal server error"
	}
	c.AbortWithStatusJSON(code, envelope{Message: message, Errors: e.Fields})
}

func statusOf(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation, model.KindInvalidOperation:
		return http.StatusBadRequest
	case model.KindUnauthenticated:
		return http.StatusUnauthorized
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errBadBody() error {
	return model.NewErrValidation("invalid request body")
}
