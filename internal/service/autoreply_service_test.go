package service

import (
	"context"
	"errors"
	"testing"

	"github.com/souqapp/classifieds-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func saveSettings(t *testing.T, env *testEnv, s *model.SellerChatSettings) {
	t.Helper()
	require.NoError(t, env.setRepo.Upsert(context.Background(), s))
}

func autoReplies(t *testing.T, env *testEnv, convID uint64) []model.Message {
	t.Helper()
	var out []model.Message
	for _, m := range env.messages(t, convID) {
		if m.IsAutoReply {
			out = append(out, m)
		}
	}
	return out
}

func TestStandardAutoReplyAtMostOnce(t *testing.T) {
	env := newTestEnv(t)
	env.membership.tiers["seller"] = TierPro
	saveSettings(t, env, &model.SellerChatSettings{
		SellerUID:        "seller",
		AutoReplyEnabled: true,
		AutoReplyMessage: "Thanks, I reply within a day.",
	})

	cv := env.startConversation(t, "buyer", "seller", "msg 1")
	for i := 0; i < 4; i++ {
		env.send(t, cv.ID, "buyer", "another message")
	}

	replies := autoReplies(t, env, cv.ID)
	require.Len(t, replies, 1, "five buyer messages in the window must yield one reply")
	require.Equal(t, "seller", replies[0].SenderUID)
	require.Equal(t, model.AutoReplyStandard, replies[0].AutoReplyType)
	require.Equal(t, "Thanks, I reply within a day.", replies[0].Body)
	require.Equal(t, model.StatusSent, replies[0].Status)
}

func TestVacationBeatsStandardReply(t *testing.T) {
	env := newTestEnv(t)
	env.membership.tiers["seller"] = TierShop
	saveSettings(t, env, &model.SellerChatSettings{
		SellerUID:        "seller",
		VacationMode:     true,
		VacationMessage:  "Away until Monday.",
		AutoReplyEnabled: true,
		AutoReplyMessage: "Thanks for your message.",
	})

	cv := env.startConversation(t, "buyer", "seller", "hello")

	replies := autoReplies(t, env, cv.ID)
	require.Len(t, replies, 1)
	require.Equal(t, model.AutoReplyVacation, replies[0].AutoReplyType)
	require.Equal(t, "Away until Monday.", replies[0].Body)
}

func TestVacationReplyOncePerWindow(t *testing.T) {
	env := newTestEnv(t)
	env.membership.tiers["seller"] = TierPro
	saveSettings(t, env, &model.SellerChatSettings{
		SellerUID:       "seller",
		VacationMode:    true,
		VacationMessage: "On vacation.",
	})

	cv := env.startConversation(t, "buyer", "seller", "first")
	env.send(t, cv.ID, "buyer", "second")
	env.send(t, cv.ID, "buyer", "third")

	require.Len(t, autoReplies(t, env, cv.ID), 1)
}

func TestNoAutoReplyForFreeTier(t *testing.T) {
	env := newTestEnv(t)
	env.membership.tiers["seller"] = TierFree
	saveSettings(t, env, &model.SellerChatSettings{
		SellerUID:        "seller",
		AutoReplyEnabled: true,
		AutoReplyMessage: "Thanks!",
	})

	cv := env.startConversation(t, "buyer", "seller", "hello")
	require.Empty(t, autoReplies(t, env, cv.ID))
}

func TestNoAutoReplyForSellerMessages(t *testing.T) {
	env := newTestEnv(t)
	env.membership.tiers["seller"] = TierPro
	saveSettings(t, env, &model.SellerChatSettings{
		SellerUID:       "seller",
		VacationMode:    true,
		VacationMessage: "Away.",
	})

	cv := env.startConversation(t, "buyer", "seller", "hello")
	require.Len(t, autoReplies(t, env, cv.ID), 1)

	// The seller writing back must not trigger anything further, and the
	// auto-reply itself never re-triggers the engine.
	env.send(t, cv.ID, "seller", "actually I'm here")
	require.Len(t, autoReplies(t, env, cv.ID), 1)
}

func TestTierLookupFailureIsSilent(t *testing.T) {
	env := newTestEnv(t)
	env.membership.err = errors.New("membership service down")
	saveSettings(t, env, &model.SellerChatSettings{
		SellerUID:        "seller",
		AutoReplyEnabled: true,
		AutoReplyMessage: "Thanks!",
	})

	// The send itself must succeed with no reply injected.
	cv := env.startConversation(t, "buyer", "seller", "hello")
	require.Empty(t, autoReplies(t, env, cv.ID))
	require.Len(t, env.messages(t, cv.ID), 1)
}

func TestAutoReplyNotifiesBuyer(t *testing.T) {
	env := newTestEnv(t)
	env.membership.tiers["seller"] = TierPro
	saveSettings(t, env, &model.SellerChatSettings{
		SellerUID:       "seller",
		VacationMode:    true,
		VacationMessage: "Away.",
	})

	env.startConversation(t, "buyer", "seller", "hello")

	events := env.notifier.byType("chat_auto_reply")
	require.Len(t, events, 1)
	require.Equal(t, "buyer", events[0].UID)
}
