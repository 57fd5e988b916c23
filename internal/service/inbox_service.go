package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/souqapp/classifieds-backend/internal/model"
	"github.com/souqapp/classifieds-backend/internal/repository"
)

const inboxPageSize = 20

// Presence is the online/typing half of the websocket hub. A nil hub answers
// false to everything.
type Presence interface {
	IsOnline(uid string) bool
	IsTyping(convID uint64, uid string) bool
}

// ConversationSummary is the read-only annotated row the inbox renders.
// Nothing here is persisted.
type ConversationSummary struct {
	Conversation model.Conversation `json:"conversation"`
	ItemTitle    string             `json:"itemTitle"`
	ItemImageURL *string            `json:"itemImageUrl,omitempty"`

	IsPinned   bool `json:"isPinned"`
	IsArchived bool `json:"isArchived"`
	IsMuted    bool `json:"isMuted"`

	LastMessageText string     `json:"lastMessageText"`
	LastMessageType string     `json:"lastMessageType,omitempty"`
	LastSenderUID   string     `json:"lastSenderUid,omitempty"`
	LastMessageAt   *time.Time `json:"lastMessageAt,omitempty"`

	UnreadChatCount int64 `json:"unreadChatCount"`

	CounterpartUID string `json:"counterpartUid"`
	IsOnline       bool   `json:"isOnline"`
	IsTyping       bool   `json:"isTyping"`
}

type InboxService interface {
	List(ctx context.Context, viewerUID string, view repository.ListView, page int) ([]ConversationSummary, int64, error)
}

type inboxService struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	itemRepo repository.ItemRepository
	presence Presence
}

func NewInboxService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	itemRepo repository.ItemRepository,
	presence Presence,
) InboxService {
	return &inboxService{convRepo: convRepo, msgRepo: msgRepo, itemRepo: itemRepo, presence: presence}
}

func (s *inboxService) List(ctx context.Context, viewerUID string, view repository.ListView, page int) ([]ConversationSummary, int64, error) {
	if page < 1 {
		page = 1
	}
	convs, total, err := s.convRepo.ListForUser(ctx, viewerUID, view, inboxPageSize, (page-1)*inboxPageSize)
	if err != nil {
		return nil, 0, err
	}

	itemIDs := make([]uint64, 0, len(convs))
	for _, cv := range convs {
		itemIDs = append(itemIDs, cv.ItemID)
	}
	items, err := s.itemRepo.FindByIDs(ctx, itemIDs)
	if err != nil {
		log.Warn().Err(err).Msg("inbox: item batch load failed")
		items = map[uint64]model.Item{}
	}

	out := make([]ConversationSummary, 0, len(convs))
	for i := range convs {
		cv := convs[i]
		sum, err := s.annotate(ctx, viewerUID, cv, items)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, sum)
	}
	return out, total, nil
}

func (s *inboxService) annotate(ctx context.Context, viewerUID string, cv model.Conversation, items map[uint64]model.Item) (ConversationSummary, error) {
	counterpart := cv.CounterpartOf(viewerUID)
	sum := ConversationSummary{
		Conversation:   cv,
		CounterpartUID: counterpart,
	}
	if item, ok := items[cv.ItemID]; ok {
		sum.ItemTitle = item.Title
		sum.ItemImageURL = item.ImageURL
	}

	flags, err := s.convRepo.FlagsFor(ctx, cv.ID, viewerUID)
	if err != nil {
		return sum, err
	}
	_, sum.IsPinned = flags[model.FlagPinned]
	_, sum.IsArchived = flags[model.FlagArchived]
	_, sum.IsMuted = flags[model.FlagMuted]

	// A still-present deleted flag means this row only surfaced because the
	// counterpart wrote after the deletion; the unread count must not reach
	// back past that point.
	if deletedAt, ok := flags[model.FlagDeleted]; ok {
		sum.UnreadChatCount, err = s.msgRepo.UnreadCountSince(ctx, cv.ID, viewerUID, deletedAt)
	} else {
		sum.UnreadChatCount, err = s.msgRepo.UnreadCount(ctx, cv.ID, viewerUID)
	}
	if err != nil {
		return sum, err
	}

	last, err := s.msgRepo.LastMessage(ctx, cv.ID)
	if err != nil {
		return sum, err
	}
	if last != nil {
		sum.LastMessageText = last.FallbackText()
		sum.LastMessageType = string(last.MessageType)
		sum.LastSenderUID = last.SenderUID
		t := last.CreatedAt
		sum.LastMessageAt = &t
	}

	if s.presence != nil {
		sum.IsOnline = s.presence.IsOnline(counterpart)
		sum.IsTyping = s.presence.IsTyping(cv.ID, counterpart)
	}
	return sum, nil
}
