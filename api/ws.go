package api

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"pairchat/domain"
	"pairchat/errors"
	"pairchat/hub"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth happens before the upgrade; the origin carries no trust.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsHandlers struct {
	*Handlers
	log *slog.Logger
}

// StreamConversation replays the full message log, then pushes live
// events until the client disconnects or the subscription drops.
func (h *wsHandlers) StreamConversation(c *gin.Context) {
	convID := domain.ConversationID(c.Param("id"))
	msgs, sub, err := h.chat.SubscribeConversation(c.Request.Context(), caller(c), convID)
	if err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	snapshot := wsFrame{Type: "snapshot", Payload: h.mapper.messages(c.Request.Context(), msgs)}
	h.stream(c, sub, snapshot)
}

// StreamChatList replays the caller's chat list, then follows with
// summary and presence updates for their user subject.
func (h *wsHandlers) StreamChatList(c *gin.Context) {
	summaries, sub, err := h.chat.SubscribeChatList(c.Request.Context(), caller(c))
	if err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	snapshot := wsFrame{Type: "snapshot", Payload: toChatResponses(summaries)}
	h.stream(c, sub, snapshot)
}

// StreamPresence watches one peer's online/typing state.
func (h *wsHandlers) StreamPresence(c *gin.Context) {
	targetID := c.Param("userId")
	current, sub, err := h.chat.SubscribePresence(c.Request.Context(), caller(c), targetID)
	if err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	snapshot := wsFrame{Type: "snapshot", Payload: toPresenceResponse(targetID, current)}
	h.stream(c, sub, snapshot)
}

func (h *wsHandlers) stream(c *gin.Context, sub *hub.Subscription, snapshot wsFrame) {
	defer sub.Cancel()

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	// The read pump only notices client-side closes.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.writeFrame(ws, snapshot); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-clientGone:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-sub.Done():
			if stderrors.Is(sub.Err(), errors.ErrOverflow) {
				// The consumer fell behind; tell it to resubscribe for a
				// fresh replay instead of silently losing events.
				ws.SetWriteDeadline(time.Now().Add(writeWait))
				ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "overflow: resubscribe"),
					time.Now().Add(writeWait))
			}
			return
		case evt := <-sub.Events():
			frame, ok := h.mapper.frame(ctx, evt)
			if !ok {
				continue
			}
			if err := h.writeFrame(ws, frame); err != nil {
				return
			}
		}
	}
}

func (h *wsHandlers) writeFrame(ws *websocket.Conn, frame wsFrame) error {
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteJSON(frame); err != nil {
		h.log.Debug("websocket write failed", "error", err)
		return err
	}
	return nil
}
