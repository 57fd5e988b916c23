package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/souqapp/classifieds-backend/internal/model"
	"github.com/souqapp/classifieds-backend/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestInboxViewsSelectByRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	asBuyer := env.startConversation(t, "alice", "bob", "I want this")
	asSeller := env.startConversation(t, "carol", "alice", "me too")

	list, total, err := env.inbox.List(ctx, "alice", repository.ViewBuyer, 1)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, asBuyer.ID, list[0].Conversation.ID)
	require.Equal(t, "bob", list[0].CounterpartUID)
	require.Equal(t, "Road bike", list[0].ItemTitle)

	list, total, err = env.inbox.List(ctx, "alice", repository.ViewSeller, 1)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, asSeller.ID, list[0].Conversation.ID)
	require.Equal(t, "carol", list[0].CounterpartUID)
}

func TestInboxArchivedView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cv := env.startConversation(t, "alice", "bob", "hi")
	keep := env.startConversation(t, "alice", "dave", "hi dave")

	require.NoError(t, env.chat.SetFlag(ctx, cv.ID, "alice", model.FlagArchived, true))

	list, _, err := env.inbox.List(ctx, "alice", repository.ViewBuyer, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, keep.ID, list[0].Conversation.ID)

	list, _, err = env.inbox.List(ctx, "alice", repository.ViewArchived, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, cv.ID, list[0].Conversation.ID)
	require.True(t, list[0].IsArchived)

	// Archiving is per-user: bob still sees the thread in his seller view.
	list, _, err = env.inbox.List(ctx, "bob", repository.ViewSeller, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestInboxHidesDeletedUntilCounterpartWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cv := env.startConversation(t, "alice", "bob", "first")
	env.send(t, cv.ID, "bob", "second")

	require.NoError(t, env.chat.SetFlag(ctx, cv.ID, "alice", model.FlagDeleted, true))

	list, _, err := env.inbox.List(ctx, "alice", repository.ViewBuyer, 1)
	require.NoError(t, err)
	require.Empty(t, list, "deleted conversation must be hidden")

	// The counterpart writing resurfaces it; the flag row stays until
	// alice reads, so visibility is the selection query's job.
	env.send(t, cv.ID, "bob", "are you still there?")

	list, _, err = env.inbox.List(ctx, "alice", repository.ViewBuyer, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, cv.ID, list[0].Conversation.ID)
}

func TestResurfacedUnreadCountsOnlyNewMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cv := env.startConversation(t, "alice", "bob", "hi")
	env.send(t, cv.ID, "bob", "old 1")
	env.send(t, cv.ID, "bob", "old 2")

	require.NoError(t, env.chat.SetFlag(ctx, cv.ID, "alice", model.FlagDeleted, true))
	env.send(t, cv.ID, "bob", "new one")

	list, _, err := env.inbox.List(ctx, "alice", repository.ViewBuyer, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.EqualValues(t, 1, list[0].UnreadChatCount,
		"unread count must ignore messages from before the deletion")
	require.Equal(t, "new one", list[0].LastMessageText)
}

func TestInboxSortsByLastActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.startConversation(t, "alice", "bob", "hi bob")
	second := env.startConversation(t, "alice", "carol", "hi carol")

	list, _, err := env.inbox.List(ctx, "alice", repository.ViewBuyer, 1)
	require.NoError(t, err)
	require.Equal(t, second.ID, list[0].Conversation.ID)
	require.Equal(t, first.ID, list[1].Conversation.ID)

	// New activity moves the older thread back to the top.
	env.send(t, first.ID, "bob", "hello again")
	list, _, err = env.inbox.List(ctx, "alice", repository.ViewBuyer, 1)
	require.NoError(t, err)
	require.Equal(t, first.ID, list[0].Conversation.ID)
}

func TestInboxPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		env.startConversation(t, "alice", fmt.Sprintf("seller-%02d", i), "hi")
	}

	page1, total, err := env.inbox.List(ctx, "alice", repository.ViewBuyer, 1)
	require.NoError(t, err)
	require.EqualValues(t, 25, total)
	require.Len(t, page1, 20)

	page2, _, err := env.inbox.List(ctx, "alice", repository.ViewBuyer, 2)
	require.NoError(t, err)
	require.Len(t, page2, 5)

	seen := map[uint64]bool{}
	for _, s := range append(page1, page2...) {
		require.False(t, seen[s.Conversation.ID])
		seen[s.Conversation.ID] = true
	}
}

func TestInboxAnnotations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cv := env.startConversation(t, "alice", "bob", "text first")
	require.NoError(t, env.chat.SetFlag(ctx, cv.ID, "alice", model.FlagPinned, true))
	require.NoError(t, env.chat.SetFlag(ctx, cv.ID, "alice", model.FlagMuted, true))

	// Audio-only message gets the fallback text in the list.
	key := "attachments/voice.ogg"
	_, err := env.chat.Append(ctx, cv.ID, "bob", "", nil, &key)
	require.NoError(t, err)

	list, _, err := env.inbox.List(ctx, "alice", repository.ViewBuyer, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)

	sum := list[0]
	require.True(t, sum.IsPinned)
	require.True(t, sum.IsMuted)
	require.False(t, sum.IsArchived)
	require.Equal(t, "🎤 Audio message", sum.LastMessageText)
	require.Equal(t, string(model.MessageTypeAudio), sum.LastMessageType)
	require.Equal(t, "bob", sum.LastSenderUID)
	require.EqualValues(t, 1, sum.UnreadChatCount)
	require.False(t, sum.IsOnline, "no hub wired, presence defaults to offline")
	require.False(t, sum.IsTyping)
}
