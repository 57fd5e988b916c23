package repository

import (
	"context"
	"time"

	"github.com/souqapp/classifieds-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListView selects which slice of a user's conversations the inbox shows.
type ListView string

const (
	ViewBuyer    ListView = "buyer"
	ViewSeller   ListView = "seller"
	ViewArchived ListView = "archived"
)

type ConversationRepository interface {
	FindOrCreate(ctx context.Context, itemID uint64, sellerUID, buyerUID string, amount *uint) (*model.Conversation, error)
	FindByID(ctx context.Context, id uint64) (*model.Conversation, error)
	UpdateAmount(ctx context.Context, id uint64, amount *uint) error
	TouchLastMessage(ctx context.Context, id uint64, at time.Time) error

	SetFlag(ctx context.Context, convID uint64, uid string, flag model.FlagType) error
	ClearFlag(ctx context.Context, convID uint64, uid string, flag model.FlagType) error
	HasFlag(ctx context.Context, convID uint64, uid string, flag model.FlagType) (bool, error)
	FlagsFor(ctx context.Context, convID uint64, uid string) (map[model.FlagType]time.Time, error)
	DeletedAt(ctx context.Context, convID uint64, uid string) (*time.Time, error)

	ListForUser(ctx context.Context, uid string, view ListView, limit, offset int) ([]model.Conversation, int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) FindOrCreate(ctx context.Context, itemID uint64, sellerUID, buyerUID string, amount *uint) (*model.Conversation, error) {
	cv := model.Conversation{
		ItemID:        itemID,
		SellerUID:     sellerUID,
		BuyerUID:      buyerUID,
		Amount:        amount,
		LastMessageAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND buyer_uid = ?", itemID, buyerUID).
		FirstOrCreate(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint64) (*model.Conversation, error) {
	var cv model.Conversation
	if err := r.db.WithContext(ctx).First(&cv, id).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) UpdateAmount(ctx context.Context, id uint64, amount *uint) error {
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("amount", amount).Error
}

func (r *conversationRepository) TouchLastMessage(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error
}

// SetFlag is idempotent; the unique index on (conversation_id, user_uid, flag)
// makes concurrent sets converge on one row.
func (r *conversationRepository) SetFlag(ctx context.Context, convID uint64, uid string, flag model.FlagType) error {
	row := model.ConversationFlag{ConversationID: convID, UserUID: uid, Flag: flag}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

func (r *conversationRepository) ClearFlag(ctx context.Context, convID uint64, uid string, flag model.FlagType) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_uid = ? AND flag = ?", convID, uid, flag).
		Delete(&model.ConversationFlag{}).Error
}

func (r *conversationRepository) HasFlag(ctx context.Context, convID uint64, uid string, flag model.FlagType) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.ConversationFlag{}).
		Where("conversation_id = ? AND user_uid = ? AND flag = ?", convID, uid, flag).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *conversationRepository) FlagsFor(ctx context.Context, convID uint64, uid string) (map[model.FlagType]time.Time, error) {
	var rows []model.ConversationFlag
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_uid = ?", convID, uid).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[model.FlagType]time.Time, len(rows))
	for _, f := range rows {
		out[f.Flag] = f.CreatedAt
	}
	return out, nil
}

// DeletedAt returns when uid deleted the conversation, or nil if it is not
// currently deleted for them.
func (r *conversationRepository) DeletedAt(ctx context.Context, convID uint64, uid string) (*time.Time, error) {
	var row model.ConversationFlag
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_uid = ? AND flag = ?", convID, uid, model.FlagDeleted).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	t := row.CreatedAt
	return &t, nil
}

const (
	hasFlagSubquery = "EXISTS (SELECT 1 FROM conversation_flags f WHERE f.conversation_id = conversations.id AND f.user_uid = ? AND f.flag = ?)"
	noFlagSubquery  = "NOT " + hasFlagSubquery
	// A deleted conversation resurfaces once the counterpart wrote something
	// after the deletion timestamp.
	visibleSubquery = "(" + noFlagSubquery + " OR EXISTS (" +
		"SELECT 1 FROM messages m WHERE m.conversation_id = conversations.id AND m.sender_uid <> ? AND m.created_at > " +
		"(SELECT f2.created_at FROM conversation_flags f2 WHERE f2.conversation_id = conversations.id AND f2.user_uid = ? AND f2.flag = ?)))"
)

func (r *conversationRepository) ListForUser(ctx context.Context, uid string, view ListView, limit, offset int) ([]model.Conversation, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Conversation{})

	switch view {
	case ViewArchived:
		q = q.Where("(buyer_uid = ? OR seller_uid = ?)", uid, uid).
			Where(hasFlagSubquery, uid, model.FlagArchived)
	case ViewSeller:
		q = q.Where("seller_uid = ?", uid).
			Where(noFlagSubquery, uid, model.FlagArchived).
			Where(visibleSubquery, uid, model.FlagDeleted, uid, uid, model.FlagDeleted)
	default:
		q = q.Where("buyer_uid = ?", uid).
			Where(noFlagSubquery, uid, model.FlagArchived).
			Where(visibleSubquery, uid, model.FlagDeleted, uid, uid, model.FlagDeleted)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Conversation
	if err := q.
		Order("last_message_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
