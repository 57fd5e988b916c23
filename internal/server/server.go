package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/souqapp/classifieds-backend/internal/config"
	"github.com/souqapp/classifieds-backend/internal/handler"
	appmw "github.com/souqapp/classifieds-backend/internal/middleware"
	"github.com/souqapp/classifieds-backend/internal/model"
	"github.com/souqapp/classifieds-backend/internal/push"
	"github.com/souqapp/classifieds-backend/internal/repository"
	"github.com/souqapp/classifieds-backend/internal/service"
	"github.com/souqapp/classifieds-backend/internal/storage"
	"github.com/souqapp/classifieds-backend/internal/ws"
	"gorm.io/gorm"
)

type Server struct {
	e   *echo.Echo
	hub *ws.Hub
}

func New(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			return strings.HasSuffix(u.Hostname(), "souq.app"), nil
		},
	}))

	hub := ws.NewHub()

	attachments, err := storage.NewAttachments(ctx, cfg.StorageBucket)
	if err != nil {
		return nil, err
	}

	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	itemRepo := repository.NewItemRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	pushRepo := repository.NewPushRepository(db)

	notifier := push.NewNotifier(pushRepo, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber)
	notifSvc := service.NewNotificationService(notifRepo, notifier, hub)
	membershipSvc := service.NewMembershipService(membershipRepo)
	autoReply := service.NewAutoReplyEngine(msgRepo, convRepo, settingsRepo, membershipSvc, notifSvc)
	chatSvc := service.NewChatService(convRepo, msgRepo, blockRepo, itemRepo, autoReply, notifSvc)
	inboxSvc := service.NewInboxService(convRepo, msgRepo, itemRepo, hub)
	settingsSvc := service.NewSettingsService(settingsRepo)
	blockSvc := service.NewBlockService(blockRepo)

	convHandler := handler.NewConversationHandler(chatSvc, inboxSvc)
	msgHandler := handler.NewMessageHandler(chatSvc, attachments)
	settingsHandler := handler.NewSettingsHandler(settingsSvc, blockSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc, pushRepo, notifier)

	authMw, err := appmw.NewAuthMiddleware(ctx, cfg.FirebaseProjectID)
	if err != nil {
		return nil, err
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api", authMw.RequireAuth)
	api.POST("/items/:id/offers", msgHandler.CreateOffer)
	api.GET("/conversations", convHandler.List)
	api.GET("/conversations/:id/messages", msgHandler.ListMessages)
	api.POST("/conversations/:id/messages", msgHandler.Send)
	api.POST("/conversations/:id/seen", convHandler.MarkSeen)
	api.POST("/conversations/:id/unread", convHandler.MarkUnread)
	api.PUT("/conversations/:id/archive", convHandler.SetFlag(model.FlagArchived))
	api.PUT("/conversations/:id/delete", convHandler.SetFlag(model.FlagDeleted))
	api.PUT("/conversations/:id/pin", convHandler.SetFlag(model.FlagPinned))
	api.PUT("/conversations/:id/mute", convHandler.SetFlag(model.FlagMuted))
	api.POST("/blocks/:uid", settingsHandler.Block)
	api.DELETE("/blocks/:uid", settingsHandler.Unblock)
	api.GET("/me/chat-settings", settingsHandler.GetChatSettings)
	api.PUT("/me/chat-settings", settingsHandler.UpdateChatSettings)
	api.POST("/attachments", msgHandler.UploadAttachment)
	api.POST("/push/subscriptions", notifHandler.Subscribe)
	api.GET("/notifications", notifHandler.List)
	api.POST("/notifications/read", notifHandler.MarkAllRead)
	api.GET("/ws", hub.Handle)

	return &Server{e: e, hub: hub}, nil
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
