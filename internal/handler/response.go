package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/souqapp/classifieds-backend/internal/service"
)

// Envelope is the uniform response shape for every endpoint.
type Envelope struct {
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(data interface{}) Envelope {
	return Envelope{Error: false, Message: "ok", Data: data}
}

func Fail(message string) Envelope {
	return Envelope{Error: true, Message: message}
}

// respondError maps service errors onto status codes: 403 non-participant,
// 404 missing, 422 validation/blocked, 500 otherwise.
func respondError(c echo.Context, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, Fail("not found"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, Fail("not a participant"))
	case errors.Is(err, service.ErrBlockedByYou), errors.Is(err, service.ErrBlockedByThem):
		return c.JSON(http.StatusUnprocessableEntity, Fail(err.Error()))
	case errors.As(err, &ve):
		return c.JSON(http.StatusUnprocessableEntity, Envelope{
			Error:   true,
			Message: ve.Reason,
			Data:    map[string]string{"field": ve.Field},
		})
	}
	return c.JSON(http.StatusInternalServerError, Fail("internal error"))
}

func currentUID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, Fail("unauthorized"))
}
