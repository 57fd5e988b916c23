package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/souqapp/classifieds-backend/internal/model"
	"github.com/souqapp/classifieds-backend/internal/push"
	"github.com/souqapp/classifieds-backend/internal/repository"
	"github.com/souqapp/classifieds-backend/internal/service"
)

type NotificationHandler struct {
	notifications service.NotificationService
	pushRepo      repository.PushRepository
	notifier      *push.Notifier
}

func NewNotificationHandler(notifications service.NotificationService, pushRepo repository.PushRepository, notifier *push.Notifier) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, pushRepo: pushRepo, notifier: notifier}
}

func (h *NotificationHandler) List(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	unreadOnly := c.QueryParam("unread") == "true"
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, unread, err := h.notifications.List(c.Request().Context(), uid, unreadOnly, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, OK(map[string]interface{}{
		"notifications": list,
		"unreadCount":   unread,
	}))
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	if err := h.notifications.MarkAllRead(c.Request().Context(), uid); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, OK(nil))
}

type PushSubscribeRequest struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

func (h *NotificationHandler) Subscribe(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var req PushSubscribeRequest
	if err := c.Bind(&req); err != nil || req.Endpoint == "" || req.P256dh == "" || req.Auth == "" {
		return c.JSON(http.StatusUnprocessableEntity, Fail("invalid subscription"))
	}
	sub := &model.PushSubscription{
		UserUID:   uid,
		Endpoint:  req.Endpoint,
		KeyP256dh: req.P256dh,
		KeyAuth:   req.Auth,
	}
	if err := h.pushRepo.Save(c.Request().Context(), sub); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, OK(map[string]string{"vapidPublicKey": h.notifier.VAPIDPublicKey()}))
}
