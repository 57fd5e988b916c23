package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/souqapp/classifieds-backend/internal/model"
	"github.com/souqapp/classifieds-backend/internal/service"
	"github.com/souqapp/classifieds-backend/internal/storage"
)

type MessageHandler struct {
	chat        service.ChatService
	attachments *storage.Attachments
}

func NewMessageHandler(chat service.ChatService, attachments *storage.Attachments) *MessageHandler {
	return &MessageHandler{chat: chat, attachments: attachments}
}

type SendMessageRequest struct {
	Body     string  `json:"body"`
	FileKey  *string `json:"fileKey"`
	AudioKey *string `json:"audioKey"`
}

type OfferRequest struct {
	Amount *uint `json:"amount"`
	SendMessageRequest
}

// MessageResponse is one log entry with attachment keys resolved to URLs.
type MessageResponse struct {
	ID             uint64    `json:"id"`
	ConversationID uint64    `json:"conversationId"`
	SenderUID      string    `json:"senderUid"`
	Body           string    `json:"body"`
	MessageType    string    `json:"messageType"`
	FileURL        string    `json:"fileUrl,omitempty"`
	AudioURL       string    `json:"audioUrl,omitempty"`
	Status         string    `json:"status"`
	IsRead         bool      `json:"isRead"`
	IsAutoReply    bool      `json:"isAutoReply"`
	AutoReplyType  string    `json:"autoReplyType"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (h *MessageHandler) toResponse(m model.Message) MessageResponse {
	resp := MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderUID:      m.SenderUID,
		Body:           m.Body,
		MessageType:    string(m.MessageType),
		Status:         string(m.Status),
		IsRead:         m.IsRead,
		IsAutoReply:    m.IsAutoReply,
		AutoReplyType:  string(m.AutoReplyType),
		CreatedAt:      m.CreatedAt,
	}
	if m.FileKey != nil {
		resp.FileURL = h.attachments.ResolveURL(*m.FileKey)
	}
	if m.AudioKey != nil {
		resp.AudioURL = h.attachments.ResolveURL(*m.AudioKey)
	}
	return resp
}

// CreateOffer starts (or reopens) the buyer's conversation on an item.
func (h *MessageHandler) CreateOffer(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, Fail("invalid item id"))
	}
	var req OfferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, Fail("invalid json"))
	}
	cv, msg, err := h.chat.CreateOffer(c.Request().Context(), itemID, uid, req.Amount, req.Body, req.FileKey, req.AudioKey)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, OK(map[string]interface{}{
		"conversation": cv,
		"message":      h.toResponse(*msg),
	}))
}

func (h *MessageHandler) Send(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	convID, err := convIDParam(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, Fail("invalid conversation id"))
	}
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, Fail("invalid json"))
	}
	msg, err := h.chat.Append(c.Request().Context(), convID, uid, req.Body, req.FileKey, req.AudioKey)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, OK(h.toResponse(*msg)))
}

func (h *MessageHandler) ListMessages(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	convID, err := convIDParam(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, Fail("invalid conversation id"))
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	msgs, total, err := h.chat.ListMessages(c.Request().Context(), convID, uid, page)
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, h.toResponse(m))
	}
	return c.JSON(http.StatusOK, OK(map[string]interface{}{
		"messages": resp,
		"total":    total,
	}))
}

// UploadAttachment stores raw bytes and returns the reference to put on a
// subsequent send.
func (h *MessageHandler) UploadAttachment(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if contentType == "" {
		return c.JSON(http.StatusUnprocessableEntity, Fail("content type is required"))
	}
	key, err := h.attachments.Upload(c.Request().Context(), c.Request().Body, contentType)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, Fail("attachment storage unavailable"))
	}
	return c.JSON(http.StatusCreated, OK(map[string]string{"key": key}))
}
