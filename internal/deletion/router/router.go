package router

import (
	"context"

	"unsend_service/internal/deletion/api/handlers"
	"unsend_service/internal/deletion/app"
	"unsend_service/pkg/metrics"
	"unsend_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes 註冊刪除服務的路由
// @title Unsend Service API
// @version 1.0
// @description Message deletion and unsend reconciliation
// @host localhost:8080
// @BasePath /
func RegisterRoutes(r *fiber.App, deletionHandler *handlers.DeletionHandler, deletionWebsocket *app.DeletionWebsocketHandler) {
	r.Get("/swagger/*", swagger.HandlerDefault)
	r.Get("/", handlers.ConnectCheck)
	r.Post("/debug", handlers.DebugLogFlag)
	r.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api", middlewares.JWTMiddleware())
	conversations := api.Group("/conversations/:conversationId")
	conversations.Get("/deletion", deletionHandler.GetEligibility)
	conversations.Post("/messages/delete", deletionHandler.DeleteMessages)
	conversations.Post("/messages/clear", deletionHandler.ClearMessages)

	if deletionWebsocket != nil {
		r.Get("/ws", middlewares.JWTMiddleware(), websocket.New(func(c *websocket.Conn) {
			deletionWebsocket.HandleConnection(context.Background(), c)
		}))
	}
}
