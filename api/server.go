// Package api realizes the client-facing operations as REST plus
// websocket streams. The transport is deliberately thin: every decision
// lives in the services it delegates to.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pairchat/contract"
	"pairchat/sink"
)

// BuildRouter wires all routes. blobRoot, when non-empty, is served under
// /blobs so locally stored media resolves to a working download URL.
func BuildRouter(log *slog.Logger, handlers *Handlers,
	identity contract.IIdentityProvider, tally *sink.Tally, blobRoot string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
			"events": tally.Snapshot(),
		})
	})

	if blobRoot != "" {
		router.Static("/blobs", blobRoot)
	}

	v1 := router.Group("/api/v1")

	v1.POST("/auth/register", handlers.Register)
	v1.POST("/auth/login", handlers.Login)

	authed := v1.Group("", AuthRequired(identity))
	authed.GET("/users", handlers.ListContacts)
	authed.PUT("/me", handlers.UpdateProfile)

	authed.POST("/messages", handlers.Send)
	authed.GET("/conversations", handlers.ListConversations)
	authed.GET("/conversations/:id/messages", handlers.ListMessages)
	authed.POST("/conversations/:id/seen", handlers.MarkSeen)

	authed.POST("/presence/online", handlers.SetOnline)
	authed.POST("/presence/typing", handlers.SetTyping)
	authed.POST("/presence/heartbeat", handlers.Heartbeat)

	authed.POST("/blobs", handlers.UploadBlob)

	ws := &wsHandlers{Handlers: handlers, log: log}
	authed.GET("/ws/conversations/:id", ws.StreamConversation)
	authed.GET("/ws/chats", ws.StreamChatList)
	authed.GET("/ws/presence/:userId", ws.StreamPresence)

	return router
}
