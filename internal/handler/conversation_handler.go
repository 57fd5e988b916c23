package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/souqapp/classifieds-backend/internal/model"
	"github.com/souqapp/classifieds-backend/internal/repository"
	"github.com/souqapp/classifieds-backend/internal/service"
)

type ConversationHandler struct {
	chat  service.ChatService
	inbox service.InboxService
}

func NewConversationHandler(chat service.ChatService, inbox service.InboxService) *ConversationHandler {
	return &ConversationHandler{chat: chat, inbox: inbox}
}

func convIDParam(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

type ListConversationsResponse struct {
	Conversations []service.ConversationSummary `json:"conversations"`
	Total         int64                         `json:"total"`
	Page          int                           `json:"page"`
}

// List is the inbox projector endpoint: ?view=buyer|seller|archived&page=N.
func (h *ConversationHandler) List(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	view := repository.ListView(c.QueryParam("view"))
	switch view {
	case repository.ViewBuyer, repository.ViewSeller, repository.ViewArchived:
	case "":
		view = repository.ViewBuyer
	default:
		return c.JSON(http.StatusUnprocessableEntity, Fail("unknown view"))
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	list, total, err := h.inbox.List(c.Request().Context(), uid, view, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, OK(ListConversationsResponse{
		Conversations: list,
		Total:         total,
		Page:          page,
	}))
}

func (h *ConversationHandler) MarkSeen(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	convID, err := convIDParam(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, Fail("invalid conversation id"))
	}
	n, err := h.chat.MarkSeen(c.Request().Context(), convID, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, OK(map[string]int{"updated": n}))
}

func (h *ConversationHandler) MarkUnread(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	convID, err := convIDParam(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, Fail("invalid conversation id"))
	}
	if err := h.chat.MarkUnread(c.Request().Context(), convID, uid); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, OK(nil))
}

type FlagRequest struct {
	On bool `json:"on"`
}

// SetFlag backs the archive/pin/mute/delete toggles; the flag name comes from
// the route.
func (h *ConversationHandler) SetFlag(flag model.FlagType) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid := currentUID(c)
		if uid == "" {
			return unauthorized(c)
		}
		convID, err := convIDParam(c)
		if err != nil {
			return c.JSON(http.StatusNotFound, Fail("invalid conversation id"))
		}
		var req FlagRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, Fail("invalid json"))
		}
		if err := h.chat.SetFlag(c.Request().Context(), convID, uid, flag, req.On); err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, OK(map[string]bool{string(flag): req.On}))
	}
}
