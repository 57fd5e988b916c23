package push

import (
	"context"
	"encoding/json"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog/log"
	"github.com/souqapp/classifieds-backend/internal/repository"
)

// Notifier sends Web Push notifications to a user's subscribed browsers.
// A nil Notifier is valid and does nothing, so callers never branch on config.
type Notifier struct {
	repo       repository.PushRepository
	publicKey  string
	privateKey string
	subscriber string
}

// NewNotifier returns nil when VAPID keys are not configured.
func NewNotifier(repo repository.PushRepository, publicKey, privateKey, subscriber string) *Notifier {
	if publicKey == "" || privateKey == "" {
		return nil
	}
	return &Notifier{repo: repo, publicKey: publicKey, privateKey: privateKey, subscriber: subscriber}
}

func (n *Notifier) VAPIDPublicKey() string {
	if n == nil {
		return ""
	}
	return n.publicKey
}

type payload struct {
	Title          string `json:"title"`
	Body           string `json:"body"`
	ConversationID uint64 `json:"conversationId,omitempty"`
}

// Notify pushes to every subscription of uid. Best-effort: failures are
// logged and expired endpoints pruned.
func (n *Notifier) Notify(ctx context.Context, uid, title, body string, convID uint64) {
	if n == nil {
		return
	}
	subs, err := n.repo.ListByUser(ctx, uid)
	if err != nil {
		log.Warn().Err(err).Str("uid", uid).Msg("push: subscription lookup failed")
		return
	}
	if len(subs) == 0 {
		return
	}
	data, _ := json.Marshal(payload{Title: title, Body: body, ConversationID: convID})
	for _, sub := range subs {
		s := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.KeyP256dh, Auth: sub.KeyAuth},
		}
		resp, err := webpush.SendNotification(data, s, &webpush.Options{
			VAPIDPublicKey:  n.publicKey,
			VAPIDPrivateKey: n.privateKey,
			Subscriber:      n.subscriber,
			TTL:             86400,
		})
		if err != nil {
			log.Warn().Err(err).Str("endpoint", sub.Endpoint).Msg("push: send failed")
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == 410 || resp.StatusCode == 404 {
			if err := n.repo.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
				log.Warn().Err(err).Str("endpoint", sub.Endpoint).Msg("push: prune failed")
			}
		}
	}
}
