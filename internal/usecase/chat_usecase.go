package usecase

import (
	"context"

	"royalchat/internal/domain/entity"
	"royalchat/internal/domain/repository"
	"royalchat/internal/domain/service"
	"royalchat/internal/infrastructure/ratelimit"
	ws "royalchat/internal/infrastructure/websocket"
	"royalchat/pkg/errors"
	"royalchat/pkg/logger"
)

// CounterpartFunc is the support routing policy: it maps a regular
// participant to the identity that answers their conversation. The default
// policy returns the single configured admin for everyone; multi-admin
// routing later is a policy swap, not a structural change.
type CounterpartFunc func(participantID string) string

// ChatUseCase is the single convergence point for both delivery paths.
// The REST handler and the websocket event handler are thin adapters over
// SendMessage, so persistence and fan-out behave identically no matter
// which path a client used.
type ChatUseCase struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	fileService service.FileUploadService
	publisher   Publisher
	rateLimiter *ratelimit.RateLimiter
	counterpart CounterpartFunc
}

func NewChatUseCase(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	fileService service.FileUploadService,
	publisher Publisher,
	rateLimiter *ratelimit.RateLimiter,
	adminID string,
) *ChatUseCase {
	if publisher == nil {
		// Fanning out before the push transport exists is a wiring
		// bug, not a per-message condition. Refuse to start.
		panic("chat use case constructed without an initialized push transport")
	}

	return &ChatUseCase{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		fileService: fileService,
		publisher:   publisher,
		rateLimiter: rateLimiter,
		counterpart: func(string) string { return adminID },
	}
}

type SendMessageInput struct {
	SenderID   string
	ReceiverID string
	Body       string
	FileURL    string
	Type       string
}

// MessageResponse is a message with its participants expanded to display
// fields. The expansion happens at query time only and is never stored.
type MessageResponse struct {
	*entity.Message
	Sender   *entity.DisplayUser `json:"sender,omitempty"`
	Receiver *entity.DisplayUser `json:"receiver,omitempty"`
}

// SendMessage validates, persists and fans out one message. The returned
// record carries the server-assigned id and timestamp; any client-supplied
// values are ignored. Fan-out goes to both the receiver's and the sender's
// rooms so every device of the sender converges on the stored record, and
// REST callers that are also joined must de-duplicate by message id.
func (uc *ChatUseCase) SendMessage(ctx context.Context, input SendMessageInput) (*entity.Message, error) {
	allowed, waitTime := uc.rateLimiter.Allow(input.SenderID, "send_message")
	if !allowed {
		logger.Warn("SendMessage rate limited: user %s must wait %v", input.SenderID, waitTime)
		return nil, errors.TooManyRequests("You are sending messages too quickly. Please slow down.")
	}

	if input.SenderID == "" || input.ReceiverID == "" {
		return nil, errors.BadRequest("Sender and receiver are required", nil)
	}
	if input.SenderID == input.ReceiverID {
		return nil, errors.BadRequest("You cannot send a message to yourself", nil)
	}

	kind := input.Type
	if kind == "" {
		kind = entity.MessageTypeText
	}
	if !entity.ValidMessageType(kind) {
		return nil, errors.BadRequest("Unknown message type", nil)
	}

	if _, err := uc.userRepo.GetByID(ctx, input.ReceiverID); err != nil {
		return nil, errors.NotFound("Receiver", err)
	}

	message := &entity.Message{
		SenderID:   input.SenderID,
		ReceiverID: input.ReceiverID,
		Body:       input.Body,
		FileURL:    input.FileURL,
		Type:       kind,
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		logger.Error("SendMessage: failed to persist message from %s: %v", input.SenderID, err)
		return nil, err
	}

	// There is no transaction spanning persistence and fan-out: a crash
	// here leaves the message stored but undelivered in real time, and
	// the next conversation load surfaces it.
	uc.publisher.Publish(message.ReceiverID, ws.EventReceiveMessage, message)
	uc.publisher.Publish(message.SenderID, ws.EventReceiveMessage, message)

	return message, nil
}

// SendFromPush is the websocket adapter over SendMessage. It satisfies the
// transport's ChatService interface.
func (uc *ChatUseCase) SendFromPush(ctx context.Context, payload ws.SendMessagePayload) error {
	_, err := uc.SendMessage(ctx, SendMessageInput{
		SenderID:   payload.Sender,
		ReceiverID: payload.Receiver,
		Body:       payload.Message,
		FileURL:    payload.FileURL,
		Type:       payload.Type,
	})
	return err
}

// GetConversation returns the full ordered history between userID and
// their routed counterpart, each message expanded with display fields.
// Only userID themselves or an admin may read it.
func (uc *ChatUseCase) GetConversation(ctx context.Context, callerID string, callerIsAdmin bool, userID string) ([]*MessageResponse, error) {
	if callerID != userID && !callerIsAdmin {
		return nil, errors.Unauthorized("You cannot read this conversation", nil)
	}

	adminID := uc.counterpart(userID)

	messages, err := uc.messageRepo.ListBetween(ctx, userID, adminID)
	if err != nil {
		return nil, err
	}

	displays := make(map[string]*entity.DisplayUser, 2)
	for _, id := range []string{userID, adminID} {
		user, err := uc.userRepo.GetByID(ctx, id)
		if err != nil {
			logger.Warn("GetConversation: participant %s not found: %v", id, err)
			continue
		}
		displays[id] = user.Display()
	}

	responses := make([]*MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, &MessageResponse{
			Message:  message,
			Sender:   displays[message.SenderID],
			Receiver: displays[message.ReceiverID],
		})
	}

	return responses, nil
}

// MarkRead flags everything the counterpart sent to the caller as read.
// Direction-specific: the caller's own messages are untouched. No read
// receipt is pushed; read state refreshes on the next query.
func (uc *ChatUseCase) MarkRead(ctx context.Context, callerID, counterpartID string) error {
	return uc.messageRepo.MarkAllRead(ctx, counterpartID, callerID)
}

// DeleteMessage soft-deletes: the record keeps its identity but its body
// is replaced by the placeholder, the file reference is cleared and the
// backing blob released. Terminal and idempotent: deleting an already
// deleted message returns it unchanged with no second file release.
func (uc *ChatUseCase) DeleteMessage(ctx context.Context, requesterID string, requesterIsAdmin bool, messageID string) (*entity.Message, error) {
	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if message.SenderID != requesterID && !requesterIsAdmin {
		return nil, errors.Forbidden("Only the sender or an admin can delete a message", nil)
	}

	if message.Deleted() {
		return message, nil
	}

	if message.FileURL != "" {
		// Best effort: a blob that is already gone must not block the
		// state transition.
		if err := uc.fileService.DeleteFile(ctx, message.FileURL); err != nil {
			logger.Warn("DeleteMessage: failed to release file for %s: %v", messageID, err)
		}
	}

	return uc.messageRepo.SoftDelete(ctx, messageID)
}

// UnreadCountFor counts unread messages addressed to userID.
func (uc *ChatUseCase) UnreadCountFor(ctx context.Context, userID string) (int64, error) {
	return uc.messageRepo.CountUnread(ctx, userID)
}
