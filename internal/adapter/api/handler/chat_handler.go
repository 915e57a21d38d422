package handler

import (
	"github.com/labstack/echo/v4"

	"royalchat/internal/domain/repository"
	"royalchat/internal/usecase"
	"royalchat/pkg/errors"
	"royalchat/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
	userRepo    repository.UserRepository
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, userRepo repository.UserRepository) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
		userRepo:    userRepo,
	}
}

// sendMessageRequest carries no sender field: on this path the sender
// is always the authenticated caller, and any sender a client puts in
// the body is ignored. The websocket push path has no bearer token on
// each frame and trusts the sender its payload names instead.
type sendMessageRequest struct {
	Receiver string `json:"receiver" validate:"required"`
	Message  string `json:"message"`
	FileURL  string `json:"fileUrl" validate:"omitempty,url"`
	Type     string `json:"type" validate:"omitempty,oneof=text image audio video emoji"`
}

// SendMessage is the REST path into the same store mutation the
// websocket push uses. Clients holding a live socket still receive the
// persisted record through their room and must de-duplicate by id.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), usecase.SendMessageInput{
		SenderID:   uid,
		ReceiverID: req.Receiver,
		Body:       req.Message,
		FileURL:    req.FileURL,
		Type:       req.Type,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// GetConversation returns the full history between a user and their
// support counterpart, oldest first. Regular users may only read their
// own thread; the admin may read any user's thread.
func (h *ChatHandler) GetConversation(c echo.Context) error {
	userID := c.Param("userId")
	if userID == "" {
		return response.Error(c, errors.BadRequest("User ID is required", nil))
	}

	uid := c.Get("uid").(string)

	messages, err := h.chatUseCase.GetConversation(c.Request().Context(), uid, h.isAdmin(c, uid), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	counterpartID := c.Param("userId")
	if counterpartID == "" {
		return response.Error(c, errors.BadRequest("User ID is required", nil))
	}

	uid := c.Get("uid").(string)

	if err := h.chatUseCase.MarkRead(c.Request().Context(), uid, counterpartID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Messages marked as read",
	})
}

func (h *ChatHandler) DeleteMessage(c echo.Context) error {
	messageID := c.Param("id")
	if messageID == "" {
		return response.Error(c, errors.BadRequest("Message ID is required", nil))
	}

	uid := c.Get("uid").(string)

	message, err := h.chatUseCase.DeleteMessage(c.Request().Context(), uid, h.isAdmin(c, uid), messageID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, message)
}

func (h *ChatHandler) isAdmin(c echo.Context, uid string) bool {
	user, err := h.userRepo.GetByID(c.Request().Context(), uid)
	if err != nil {
		return false
	}
	return user.IsAdmin()
}
