package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/souqapp/classifieds-backend/internal/model"
	"github.com/souqapp/classifieds-backend/internal/service"
)

type SettingsHandler struct {
	settings service.SettingsService
	blocks   service.BlockService
}

func NewSettingsHandler(settings service.SettingsService, blocks service.BlockService) *SettingsHandler {
	return &SettingsHandler{settings: settings, blocks: blocks}
}

func (h *SettingsHandler) GetChatSettings(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	s, err := h.settings.Get(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, OK(s))
}

type ChatSettingsRequest struct {
	VacationMode     bool   `json:"vacationMode"`
	VacationMessage  string `json:"vacationMessage"`
	AutoReplyEnabled bool   `json:"autoReplyEnabled"`
	AutoReplyMessage string `json:"autoReplyMessage"`
}

func (h *SettingsHandler) UpdateChatSettings(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var req ChatSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, Fail("invalid json"))
	}
	s := &model.SellerChatSettings{
		SellerUID:        uid,
		VacationMode:     req.VacationMode,
		VacationMessage:  req.VacationMessage,
		AutoReplyEnabled: req.AutoReplyEnabled,
		AutoReplyMessage: req.AutoReplyMessage,
	}
	if err := h.settings.Update(c.Request().Context(), s); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, OK(s))
}

func (h *SettingsHandler) Block(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	if err := h.blocks.Block(c.Request().Context(), uid, c.Param("uid")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, OK(nil))
}

func (h *SettingsHandler) Unblock(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	if err := h.blocks.Unblock(c.Request().Context(), uid, c.Param("uid")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, OK(nil))
}
