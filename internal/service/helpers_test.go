package service

import (
	"context"
	"sync"
	"testing"

	"github.com/souqapp/classifieds-backend/internal/model"
	"github.com/souqapp/classifieds-backend/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordingNotifier captures dispatches synchronously so tests can assert on
// them without sleeping.
type recordingNotifier struct {
	mu         sync.Mutex
	dispatches []dispatched
}

type dispatched struct {
	UID     string
	Payload Payload
}

func (r *recordingNotifier) Dispatch(uid string, p Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatches = append(r.dispatches, dispatched{UID: uid, Payload: p})
}

func (r *recordingNotifier) List(ctx context.Context, uid string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	return nil, 0, nil
}
func (r *recordingNotifier) MarkAllRead(ctx context.Context, uid string) error { return nil }
func (r *recordingNotifier) MarkByConversation(ctx context.Context, uid string, convID uint64) error {
	return nil
}

func (r *recordingNotifier) byType(typ string) []dispatched {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []dispatched
	for _, d := range r.dispatches {
		if d.Payload.notificationType() == typ {
			out = append(out, d)
		}
	}
	return out
}

// stubMembership lets tests pick a tier or force a lookup failure.
type stubMembership struct {
	tiers map[string]Tier
	err   error
}

func (s *stubMembership) TierOf(ctx context.Context, uid string) (Tier, error) {
	if s.err != nil {
		return TierFree, s.err
	}
	return s.tiers[uid], nil
}

type testEnv struct {
	db         *gorm.DB
	convRepo   repository.ConversationRepository
	msgRepo    repository.MessageRepository
	blockRepo  repository.BlockRepository
	itemRepo   repository.ItemRepository
	setRepo    repository.SettingsRepository
	notifier   *recordingNotifier
	membership *stubMembership
	engine     *AutoReplyEngine
	chat       ChatService
	inbox      InboxService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the one in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Item{},
		&model.Conversation{},
		&model.ConversationFlag{},
		&model.Message{},
		&model.UserBlock{},
		&model.SellerChatSettings{},
		&model.Membership{},
		&model.Notification{},
		&model.PushSubscription{},
	))

	env := &testEnv{
		db:         db,
		convRepo:   repository.NewConversationRepository(db),
		msgRepo:    repository.NewMessageRepository(db),
		blockRepo:  repository.NewBlockRepository(db),
		itemRepo:   repository.NewItemRepository(db),
		setRepo:    repository.NewSettingsRepository(db),
		notifier:   &recordingNotifier{},
		membership: &stubMembership{tiers: map[string]Tier{}},
	}
	env.engine = NewAutoReplyEngine(env.msgRepo, env.convRepo, env.setRepo, env.membership, env.notifier)
	env.chat = NewChatService(env.convRepo, env.msgRepo, env.blockRepo, env.itemRepo, env.engine, env.notifier)
	env.inbox = NewInboxService(env.convRepo, env.msgRepo, env.itemRepo, nil)
	return env
}

func newMembershipRepoForTest(e *testEnv) repository.MembershipRepository {
	return repository.NewMembershipRepository(e.db)
}

func (e *testEnv) createItem(t *testing.T, sellerUID string) *model.Item {
	t.Helper()
	item := &model.Item{SellerUID: sellerUID, Title: "Road bike", Price: 120}
	require.NoError(t, e.itemRepo.Create(context.Background(), item))
	return item
}

// startConversation creates the conversation via the offer path with an
// initial buyer message.
func (e *testEnv) startConversation(t *testing.T, buyerUID, sellerUID, body string) *model.Conversation {
	t.Helper()
	item := e.createItem(t, sellerUID)
	cv, _, err := e.chat.CreateOffer(context.Background(), item.ID, buyerUID, nil, body, nil, nil)
	require.NoError(t, err)
	return cv
}

func (e *testEnv) send(t *testing.T, convID uint64, senderUID, body string) *model.Message {
	t.Helper()
	msg, err := e.chat.Append(context.Background(), convID, senderUID, body, nil, nil)
	require.NoError(t, err)
	return msg
}

func (e *testEnv) messages(t *testing.T, convID uint64) []model.Message {
	t.Helper()
	msgs, _, err := e.msgRepo.ListByConversation(context.Background(), convID, 100, 0)
	require.NoError(t, err)
	return msgs
}
