package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pairchat/contract"
	"pairchat/domain"
	"pairchat/services"
)

// maxBlobSize bounds uploads; anything larger belongs on a real CDN.
const maxBlobSize = 10 << 20

type Handlers struct {
	auth     services.IAuthService
	chat     services.IChatService
	presence services.IPresenceService
	blobs    contract.IBlobStore
	mapper   mapper
}

func NewHandlers(auth services.IAuthService, chat services.IChatService,
	presence services.IPresenceService, blobs contract.IBlobStore) *Handlers {
	return &Handlers{
		auth:     auth,
		chat:     chat,
		presence: presence,
		blobs:    blobs,
		mapper:   mapper{blobs: blobs},
	}
}

func (h *Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	token, user, err := h.auth.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, authResponse{Token: string(token), User: toUserResponse(user)})
}

func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, authResponse{Token: string(token), User: toUserResponse(user)})
}

func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), caller(c), req.Name, req.Status, req.AvatarRef)
	if err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *Handlers) ListContacts(c *gin.Context) {
	users, err := h.chat.ListContacts(c.Request.Context(), caller(c))
	if err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	res := make([]userResponse, 0, len(users))
	for _, u := range users {
		u.Email = "" // contacts don't expose each other's login email
		res = append(res, toUserResponse(u))
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	content := domain.Content{Body: req.Message, MediaRef: req.MediaRef}
	msg, err := h.chat.Send(c.Request.Context(), caller(c), req.ReceiverID, content)
	if err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, h.mapper.message(c.Request.Context(), msg))
}

func (h *Handlers) ListConversations(c *gin.Context) {
	summaries, err := h.chat.ListConversations(c.Request.Context(), caller(c))
	if err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, toChatResponses(summaries))
}

func (h *Handlers) ListMessages(c *gin.Context) {
	convID := domain.ConversationID(c.Param("id"))
	afterID := domain.MessageID(c.Query("after"))

	msgs, err := h.chat.ListMessages(c.Request.Context(), caller(c), convID, afterID)
	if err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.mapper.messages(c.Request.Context(), msgs))
}

func (h *Handlers) MarkSeen(c *gin.Context) {
	var req seenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	convID := domain.ConversationID(c.Param("id"))
	err := h.chat.MarkSeen(c.Request.Context(), caller(c), convID, domain.MessageID(req.UpTo))
	if err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) SetOnline(c *gin.Context) {
	var req onlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := h.presence.SetOnline(c.Request.Context(), caller(c), req.Online); err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) SetTyping(c *gin.Context) {
	var req typingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	err := h.presence.SetTyping(c.Request.Context(), caller(c), domain.ConversationID(req.ConversationID))
	if err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) Heartbeat(c *gin.Context) {
	if err := h.presence.Heartbeat(c.Request.Context(), caller(c)); err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) UploadBlob(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBlobSize+1))
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "empty or unreadable body"})
		return
	}
	if len(data) > maxBlobSize {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "blob too large"})
		return
	}

	ref, err := h.blobs.Store(c.Request.Context(), data, c.ContentType())
	if err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	url, err := h.blobs.Resolve(c.Request.Context(), ref)
	if err != nil {
		c.JSON(httpStatus(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, blobResponse{Ref: ref, URL: url})
}
