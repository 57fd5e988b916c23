package repository

import (
	"context"
	"time"

	"github.com/souqapp/classifieds-backend/internal/model"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	ListByConversation(ctx context.Context, convID uint64, limit, offset int) ([]model.Message, int64, error)
	LastMessage(ctx context.Context, convID uint64) (*model.Message, error)
	LatestFromCounterpart(ctx context.Context, convID uint64, requesterUID string) (*model.Message, error)
	ResetToDelivered(ctx context.Context, msgID uint64) error

	MarkSeen(ctx context.Context, convID uint64, readerUID string) ([]uint64, error)
	UnreadCount(ctx context.Context, convID uint64, viewerUID string) (int64, error)
	UnreadCountSince(ctx context.Context, convID uint64, viewerUID string, since time.Time) (int64, error)

	CountFromSenderSince(ctx context.Context, convID uint64, senderUID string, since time.Time) (int64, error)
	CreateAutoReplyIfAbsent(ctx context.Context, msg *model.Message, since time.Time) (bool, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepository) ListByConversation(ctx context.Context, convID uint64, limit, offset int) ([]model.Message, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ?", convID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error; err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (r *messageRepository) LastMessage(ctx context.Context, convID uint64) (*model.Message, error) {
	var msg model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) LatestFromCounterpart(ctx context.Context, convID uint64, requesterUID string) (*model.Message, error) {
	var msg model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND sender_uid <> ?", convID, requesterUID).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) ResetToDelivered(ctx context.Context, msgID uint64) error {
	return r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("id = ?", msgID).
		Updates(map[string]interface{}{"status": model.StatusDelivered, "is_read": false}).Error
}

// MarkSeen transitions every counterpart message that was unseen at call time.
// The id set is captured first so a message appended during the sweep is never
// swept along with it.
func (r *messageRepository) MarkSeen(ctx context.Context, convID uint64, readerUID string) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Message{}).
			Where("conversation_id = ? AND sender_uid <> ? AND status <> ?", convID, readerUID, model.StatusSeen).
			Order("id ASC").
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&model.Message{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{"status": model.StatusSeen, "is_read": true}).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, convID uint64, viewerUID string) (int64, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ? AND sender_uid <> ? AND status <> ?", convID, viewerUID, model.StatusSeen).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

// UnreadCountSince scopes the count to messages after a deletion timestamp,
// for conversations that resurfaced.
func (r *messageRepository) UnreadCountSince(ctx context.Context, convID uint64, viewerUID string, since time.Time) (int64, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ? AND sender_uid <> ? AND status <> ? AND created_at > ?", convID, viewerUID, model.StatusSeen, since).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *messageRepository) CountFromSenderSince(ctx context.Context, convID uint64, senderUID string, since time.Time) (int64, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ? AND sender_uid = ? AND created_at >= ?", convID, senderUID, since).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

// CreateAutoReplyIfAbsent inserts msg unless an auto-reply of the same type
// from the same sender already exists in the window. Check and insert share a
// transaction so a retried send cannot double up.
func (r *messageRepository) CreateAutoReplyIfAbsent(ctx context.Context, msg *model.Message, since time.Time) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&model.Message{}).
			Where("conversation_id = ? AND sender_uid = ? AND is_auto_reply = ? AND auto_reply_type = ? AND created_at >= ?",
				msg.ConversationID, msg.SenderUID, true, msg.AutoReplyType, since).
			Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return nil
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}
