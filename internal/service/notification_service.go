package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/souqapp/classifieds-backend/internal/model"
	"github.com/souqapp/classifieds-backend/internal/push"
	"github.com/souqapp/classifieds-backend/internal/repository"
	"github.com/souqapp/classifieds-backend/internal/ws"
)

// Payload is one notification event. Each variant carries exactly the fields
// its channel renderers need; nothing is assembled ad hoc at call sites.
type Payload interface {
	notificationType() string
}

type NewMessagePayload struct {
	Conversation *model.Conversation
	Message      *model.Message
	ItemTitle    string
}

func (NewMessagePayload) notificationType() string { return "chat_message" }

type AutoReplyPayload struct {
	Conversation *model.Conversation
	Message      *model.Message
}

func (AutoReplyPayload) notificationType() string { return "chat_auto_reply" }

type StatusChangedPayload struct {
	ConversationID uint64
	MessageIDs     []uint64
	Status         model.MessageStatus
}

func (StatusChangedPayload) notificationType() string { return "chat_status" }

// Realtime is the broadcast half of the websocket hub.
type Realtime interface {
	Send(uid string, ev ws.Event)
}

type NotificationService interface {
	// Dispatch delivers a payload to recipientUID across all channels,
	// asynchronously. It never fails the caller.
	Dispatch(recipientUID string, p Payload)

	List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, userUID string) error
	MarkByConversation(ctx context.Context, userUID string, convID uint64) error
}

type notificationService struct {
	repo     repository.NotificationRepository
	notifier *push.Notifier
	realtime Realtime
}

func NewNotificationService(repo repository.NotificationRepository, notifier *push.Notifier, realtime Realtime) NotificationService {
	return &notificationService{repo: repo, notifier: notifier, realtime: realtime}
}

// withShortDeadline bounds dispatch work so it can never hold up a request.
func withShortDeadline() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Second)
}

func (s *notificationService) Dispatch(recipientUID string, p Payload) {
	if recipientUID == "" || p == nil {
		return
	}
	go func() {
		ctx, cancel := withShortDeadline()
		defer cancel()
		s.deliver(ctx, recipientUID, p)
	}()
}

func (s *notificationService) deliver(ctx context.Context, uid string, p Payload) {
	switch v := p.(type) {
	case NewMessagePayload:
		title := "New message"
		if v.ItemTitle != "" {
			title = fmt.Sprintf("New message about %q", v.ItemTitle)
		}
		s.persist(ctx, uid, v.notificationType(), title, v.Message.FallbackText(), v.Conversation)
		s.notifier.Notify(ctx, uid, title, v.Message.FallbackText(), v.Conversation.ID)
		s.realtime.Send(uid, ws.Event{
			Type:           "new_message",
			ConversationID: v.Conversation.ID,
			MessageID:      v.Message.ID,
			SenderUID:      v.Message.SenderUID,
			Body:           v.Message.Body,
			MessageType:    string(v.Message.MessageType),
			Status:         string(v.Message.Status),
			IsAutoReply:    v.Message.IsAutoReply,
			CreatedAt:      v.Message.CreatedAt,
		})
	case AutoReplyPayload:
		s.persist(ctx, uid, v.notificationType(), "Automatic reply", v.Message.Body, v.Conversation)
		s.realtime.Send(uid, ws.Event{
			Type:           "new_message",
			ConversationID: v.Conversation.ID,
			MessageID:      v.Message.ID,
			SenderUID:      v.Message.SenderUID,
			Body:           v.Message.Body,
			MessageType:    string(v.Message.MessageType),
			Status:         string(v.Message.Status),
			IsAutoReply:    true,
			CreatedAt:      v.Message.CreatedAt,
		})
	case StatusChangedPayload:
		// Realtime only; read receipts are not inbox material.
		s.realtime.Send(uid, ws.Event{
			Type:           "status_changed",
			ConversationID: v.ConversationID,
			MessageIDs:     v.MessageIDs,
			Status:         string(v.Status),
		})
	}
}

func (s *notificationService) persist(ctx context.Context, uid, typ, title, body string, cv *model.Conversation) {
	n := &model.Notification{
		UserUID:        uid,
		Type:           typ,
		Title:          title,
		Body:           body,
		ItemID:         &cv.ItemID,
		ConversationID: &cv.ID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Warn().Err(err).Str("uid", uid).Uint64("conversation", cv.ID).Msg("notification insert failed")
	}
}

func (s *notificationService) List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if userUID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userUID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userUID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userUID string) error {
	if userUID == "" {
		return nil
	}
	return s.repo.MarkAllRead(ctx, userUID)
}

func (s *notificationService) MarkByConversation(ctx context.Context, userUID string, convID uint64) error {
	if userUID == "" || convID == 0 {
		return nil
	}
	return s.repo.MarkByConversation(ctx, userUID, convID)
}
