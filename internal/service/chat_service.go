package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/souqapp/classifieds-backend/internal/model"
	"github.com/souqapp/classifieds-backend/internal/repository"
	"gorm.io/gorm"
)

const messagePageSize = 50

type ChatService interface {
	// CreateOffer lazily creates (or reopens) the conversation for
	// (item, buyer) and appends the first message through the normal path.
	CreateOffer(ctx context.Context, itemID uint64, buyerUID string, amount *uint, body string, fileKey, audioKey *string) (*model.Conversation, *model.Message, error)

	Append(ctx context.Context, convID uint64, senderUID, body string, fileKey, audioKey *string) (*model.Message, error)
	ListMessages(ctx context.Context, convID uint64, uid string, page int) ([]model.Message, int64, error)

	MarkSeen(ctx context.Context, convID uint64, readerUID string) (int, error)
	MarkUnread(ctx context.Context, convID uint64, requesterUID string) error
	UnreadCount(ctx context.Context, convID uint64, viewerUID string) (int64, error)

	SetFlag(ctx context.Context, convID uint64, uid string, flag model.FlagType, on bool) error
}

type chatService struct {
	convRepo  repository.ConversationRepository
	msgRepo   repository.MessageRepository
	blockRepo repository.BlockRepository
	itemRepo  repository.ItemRepository
	autoReply *AutoReplyEngine
	notifier  NotificationService
}

func NewChatService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	blockRepo repository.BlockRepository,
	itemRepo repository.ItemRepository,
	autoReply *AutoReplyEngine,
	notifier NotificationService,
) ChatService {
	return &chatService{
		convRepo:  convRepo,
		msgRepo:   msgRepo,
		blockRepo: blockRepo,
		itemRepo:  itemRepo,
		autoReply: autoReply,
		notifier:  notifier,
	}
}

func (s *chatService) checkBlocked(ctx context.Context, senderUID, recipientUID string) error {
	if blocked, err := s.blockRepo.Exists(ctx, senderUID, recipientUID); err != nil {
		return err
	} else if blocked {
		return ErrBlockedByYou
	}
	if blocked, err := s.blockRepo.Exists(ctx, recipientUID, senderUID); err != nil {
		return err
	} else if blocked {
		return ErrBlockedByThem
	}
	return nil
}

func (s *chatService) findConversation(ctx context.Context, convID uint64, uid string) (*model.Conversation, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !cv.HasParticipant(uid) {
		return nil, ErrForbidden
	}
	return cv, nil
}

func (s *chatService) CreateOffer(ctx context.Context, itemID uint64, buyerUID string, amount *uint, body string, fileKey, audioKey *string) (*model.Conversation, *model.Message, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if item.SellerUID == buyerUID {
		return nil, nil, newValidationError("itemId", "cannot make an offer on your own item")
	}
	// Check blocks before FindOrCreate so a rejected offer leaves no
	// empty conversation behind.
	if err := s.checkBlocked(ctx, buyerUID, item.SellerUID); err != nil {
		return nil, nil, err
	}
	cv, err := s.convRepo.FindOrCreate(ctx, itemID, item.SellerUID, buyerUID, amount)
	if err != nil {
		return nil, nil, err
	}
	if amount != nil && (cv.Amount == nil || *cv.Amount != *amount) {
		if err := s.convRepo.UpdateAmount(ctx, cv.ID, amount); err != nil {
			return nil, nil, err
		}
		cv.Amount = amount
	}
	msg, err := s.append(ctx, cv, buyerUID, body, fileKey, audioKey)
	if err != nil {
		return nil, nil, err
	}
	return cv, msg, nil
}

func (s *chatService) Append(ctx context.Context, convID uint64, senderUID, body string, fileKey, audioKey *string) (*model.Message, error) {
	cv, err := s.findConversation(ctx, convID, senderUID)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, cv, senderUID, body, fileKey, audioKey)
}

// append is the single write path for user messages. Order of effects:
// block check, validation, insert, conversation bump, sender un-delete,
// async dispatch, auto-reply evaluation.
func (s *chatService) append(ctx context.Context, cv *model.Conversation, senderUID, body string, fileKey, audioKey *string) (*model.Message, error) {
	recipient := cv.CounterpartOf(senderUID)

	if err := s.checkBlocked(ctx, senderUID, recipient); err != nil {
		return nil, err
	}

	hasAttachment := (fileKey != nil && *fileKey != "") || (audioKey != nil && *audioKey != "")
	if body == "" && !hasAttachment {
		return nil, newValidationError("body", "message text or an attachment is required")
	}

	msg := &model.Message{
		ConversationID: cv.ID,
		SenderUID:      senderUID,
		Body:           body,
		MessageType:    model.ComputeMessageType(body, fileKey, audioKey),
		FileKey:        fileKey,
		AudioKey:       audioKey,
		Status:         model.StatusSent,
		AutoReplyType:  model.AutoReplyNone,
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.convRepo.TouchLastMessage(ctx, cv.ID, msg.CreatedAt); err != nil {
		return nil, err
	}

	// A new message resurfaces the conversation for a recipient who had
	// deleted it; their flag row stays until they read or reply so the
	// inbox can scope unread counts to messages after the deletion.
	// Sending in a conversation you deleted yourself is a full re-open.
	if err := s.convRepo.ClearFlag(ctx, cv.ID, senderUID, model.FlagDeleted); err != nil {
		return nil, err
	}

	s.notifyNewMessage(ctx, cv, recipient, msg)
	s.autoReply.OnBuyerMessage(ctx, cv, msg)
	return msg, nil
}

func (s *chatService) notifyNewMessage(ctx context.Context, cv *model.Conversation, recipient string, msg *model.Message) {
	muted, err := s.convRepo.HasFlag(ctx, cv.ID, recipient, model.FlagMuted)
	if err != nil {
		log.Warn().Err(err).Uint64("conversation", cv.ID).Msg("mute lookup failed, notifying anyway")
	}
	if muted {
		return
	}
	title := ""
	if item, err := s.itemRepo.FindByID(ctx, cv.ItemID); err == nil {
		title = item.Title
	}
	s.notifier.Dispatch(recipient, NewMessagePayload{Conversation: cv, Message: msg, ItemTitle: title})
}

func (s *chatService) ListMessages(ctx context.Context, convID uint64, uid string, page int) ([]model.Message, int64, error) {
	if _, err := s.findConversation(ctx, convID, uid); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	return s.msgRepo.ListByConversation(ctx, convID, messagePageSize, (page-1)*messagePageSize)
}

// MarkSeen is idempotent: a second sweep with no new messages returns 0.
func (s *chatService) MarkSeen(ctx context.Context, convID uint64, readerUID string) (int, error) {
	cv, err := s.findConversation(ctx, convID, readerUID)
	if err != nil {
		return 0, err
	}
	ids, err := s.msgRepo.MarkSeen(ctx, convID, readerUID)
	if err != nil {
		return 0, err
	}
	// Reading completes a pending restore, but only when the counterpart
	// wrote after the deletion. A redundant sweep from a stale client must
	// not undelete a hidden thread.
	if deletedAt, err := s.convRepo.DeletedAt(ctx, convID, readerUID); err != nil {
		return 0, err
	} else if deletedAt != nil {
		fresh, err := s.msgRepo.CountFromSenderSince(ctx, convID, cv.CounterpartOf(readerUID), *deletedAt)
		if err != nil {
			return 0, err
		}
		if fresh > 0 {
			if err := s.convRepo.ClearFlag(ctx, convID, readerUID, model.FlagDeleted); err != nil {
				return 0, err
			}
		}
	}
	if len(ids) > 0 {
		s.notifier.Dispatch(cv.CounterpartOf(readerUID), StatusChangedPayload{
			ConversationID: convID,
			MessageIDs:     ids,
			Status:         model.StatusSeen,
		})
	}
	if err := s.notifier.MarkByConversation(ctx, readerUID, convID); err != nil {
		log.Warn().Err(err).Uint64("conversation", convID).Msg("notification mark-read failed")
	}
	return len(ids), nil
}

// MarkUnread resets only the latest counterpart message; a no-op when the
// counterpart never wrote.
func (s *chatService) MarkUnread(ctx context.Context, convID uint64, requesterUID string) error {
	if _, err := s.findConversation(ctx, convID, requesterUID); err != nil {
		return err
	}
	msg, err := s.msgRepo.LatestFromCounterpart(ctx, convID, requesterUID)
	if err != nil {
		return err
	}
	if msg == nil {
		return nil
	}
	return s.msgRepo.ResetToDelivered(ctx, msg.ID)
}

func (s *chatService) UnreadCount(ctx context.Context, convID uint64, viewerUID string) (int64, error) {
	if _, err := s.findConversation(ctx, convID, viewerUID); err != nil {
		return 0, err
	}
	return s.msgRepo.UnreadCount(ctx, convID, viewerUID)
}

// SetFlag covers archive, delete, pin and mute; all four are idempotent
// per-user set-membership toggles.
func (s *chatService) SetFlag(ctx context.Context, convID uint64, uid string, flag model.FlagType, on bool) error {
	if _, err := s.findConversation(ctx, convID, uid); err != nil {
		return err
	}
	if on {
		return s.convRepo.SetFlag(ctx, convID, uid, flag)
	}
	return s.convRepo.ClearFlag(ctx, convID, uid, flag)
}
