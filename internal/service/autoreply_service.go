package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/souqapp/classifieds-backend/internal/model"
	"github.com/souqapp/classifieds-backend/internal/repository"
)

const autoReplyWindow = 24 * time.Hour

// AutoReplyEngine injects a synthetic seller reply after a buyer message when
// the seller's tier and chat settings call for one. Every failure inside the
// engine is logged and swallowed; a broken tier lookup must never fail the
// buyer's send.
type AutoReplyEngine struct {
	msgRepo      repository.MessageRepository
	convRepo     repository.ConversationRepository
	settingsRepo repository.SettingsRepository
	membership   MembershipService
	notifier     NotificationService
}

func NewAutoReplyEngine(
	msgRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
	settingsRepo repository.SettingsRepository,
	membership MembershipService,
	notifier NotificationService,
) *AutoReplyEngine {
	return &AutoReplyEngine{
		msgRepo:      msgRepo,
		convRepo:     convRepo,
		settingsRepo: settingsRepo,
		membership:   membership,
		notifier:     notifier,
	}
}

// OnBuyerMessage evaluates the rules for one triggering message. Vacation
// wins over the standard reply; at most one reply is injected.
func (e *AutoReplyEngine) OnBuyerMessage(ctx context.Context, cv *model.Conversation, trigger *model.Message) {
	if e == nil || trigger.IsAutoReply || trigger.SenderUID != cv.BuyerUID {
		return
	}
	tier, err := e.membership.TierOf(ctx, cv.SellerUID)
	if err != nil {
		log.Warn().Err(err).Str("seller", cv.SellerUID).Msg("auto-reply: tier lookup failed")
		return
	}
	if !tier.Elevated() {
		return
	}
	settings, err := e.settingsRepo.FindBySeller(ctx, cv.SellerUID)
	if err != nil {
		log.Warn().Err(err).Str("seller", cv.SellerUID).Msg("auto-reply: settings lookup failed")
		return
	}
	if settings == nil {
		return
	}

	windowStart := time.Now().Add(-autoReplyWindow)

	switch {
	case settings.VacationMode && settings.VacationMessage != "":
		e.inject(ctx, cv, settings.VacationMessage, model.AutoReplyVacation, windowStart)
	case settings.AutoReplyEnabled && settings.AutoReplyMessage != "":
		// Only the buyer's first message of the window gets the standard
		// reply; the count includes the triggering message itself.
		sent, err := e.msgRepo.CountFromSenderSince(ctx, cv.ID, cv.BuyerUID, windowStart)
		if err != nil {
			log.Warn().Err(err).Uint64("conversation", cv.ID).Msg("auto-reply: window count failed")
			return
		}
		if sent > 1 {
			return
		}
		e.inject(ctx, cv, settings.AutoReplyMessage, model.AutoReplyStandard, windowStart)
	}
}

func (e *AutoReplyEngine) inject(ctx context.Context, cv *model.Conversation, body string, typ model.AutoReplyType, windowStart time.Time) {
	msg := &model.Message{
		ConversationID: cv.ID,
		SenderUID:      cv.SellerUID,
		Body:           body,
		MessageType:    model.MessageTypeText,
		Status:         model.StatusSent,
		IsAutoReply:    true,
		AutoReplyType:  typ,
	}
	created, err := e.msgRepo.CreateAutoReplyIfAbsent(ctx, msg, windowStart)
	if err != nil {
		log.Warn().Err(err).Uint64("conversation", cv.ID).Str("type", string(typ)).Msg("auto-reply: insert failed")
		return
	}
	if !created {
		return
	}
	if err := e.convRepo.TouchLastMessage(ctx, cv.ID, msg.CreatedAt); err != nil {
		log.Warn().Err(err).Uint64("conversation", cv.ID).Msg("auto-reply: touch failed")
	}
	e.notifier.Dispatch(cv.BuyerUID, AutoReplyPayload{Conversation: cv, Message: msg})
}
