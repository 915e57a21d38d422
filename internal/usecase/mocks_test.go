package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"royalchat/internal/domain/entity"
)

// In-memory fakes mirroring the Firestore repositories' observable
// behavior: server-assigned ids and timestamps, directional read marks,
// terminal soft deletes.

type memMessageRepo struct {
	mu        sync.Mutex
	messages  map[string]*entity.Message
	clock     time.Time
	createErr error
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{
		messages: make(map[string]*entity.Message),
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}

	r.clock = r.clock.Add(time.Second)
	message.ID = uuid.New().String()
	message.CreatedAt = r.clock
	message.Read = false

	stored := *message
	r.messages[message.ID] = &stored
	return nil
}

func (r *memMessageRepo) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, ok := r.messages[id]
	if !ok {
		return nil, fmt.Errorf("message not found: %s", id)
	}
	copied := *message
	return &copied, nil
}

func (r *memMessageRepo) ListBetween(ctx context.Context, a, b string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Message
	for _, message := range r.messages {
		if (message.SenderID == a && message.ReceiverID == b) ||
			(message.SenderID == b && message.ReceiverID == a) {
			copied := *message
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memMessageRepo) MarkAllRead(ctx context.Context, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, message := range r.messages {
		if message.SenderID == from && message.ReceiverID == to {
			message.Read = true
		}
	}
	return nil
}

func (r *memMessageRepo) SoftDelete(ctx context.Context, id string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, ok := r.messages[id]
	if !ok {
		return nil, fmt.Errorf("message not found: %s", id)
	}

	if !message.Deleted() {
		message.Body = entity.DeletedBody
		message.FileURL = ""
		message.Type = entity.MessageTypeDeleted
	}

	copied := *message
	return &copied, nil
}

func (r *memMessageRepo) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, message := range r.messages {
		if message.ReceiverID == receiverID && !message.Read {
			count++
		}
	}
	return count, nil
}

func (r *memMessageRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, message := range r.messages {
		if message.SenderID == userID || message.ReceiverID == userID {
			delete(r.messages, id)
		}
	}
	return nil
}

type memUserRepo struct {
	mu        sync.Mutex
	users     map[string]*entity.User
	createErr error
}

func newMemUserRepo(users ...*entity.User) *memUserRepo {
	repo := &memUserRepo{users: make(map[string]*entity.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found: %s", id)
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, fmt.Errorf("user not found: %s", email)
}

func (r *memUserRepo) GetByReferralCode(ctx context.Context, code string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.ReferralCode == code {
			return user, nil
		}
	}
	return nil, fmt.Errorf("no user with referral code %s", code)
}

func (r *memUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) ListUsers(ctx context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.User
	for _, user := range r.users {
		if !user.IsAdmin() {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memUserRepo) CountUsers(ctx context.Context) (int64, error) {
	users, _ := r.ListUsers(ctx)
	return int64(len(users)), nil
}

type memOTPRepo struct {
	mu   sync.Mutex
	otps map[string]*entity.OTP
}

func newMemOTPRepo() *memOTPRepo {
	return &memOTPRepo{otps: make(map[string]*entity.OTP)}
}

func (r *memOTPRepo) Upsert(ctx context.Context, otp *entity.OTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.otps {
		if existing.Email == otp.Email && existing.Purpose == otp.Purpose {
			delete(r.otps, id)
		}
	}

	otp.ID = uuid.New().String()
	otp.CreatedAt = time.Now()
	r.otps[otp.ID] = otp
	return nil
}

func (r *memOTPRepo) GetByEmailAndCode(ctx context.Context, email, code string) (*entity.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, otp := range r.otps {
		if otp.Email == email && otp.Code == code {
			return otp, nil
		}
	}
	return nil, fmt.Errorf("otp not found")
}

func (r *memOTPRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.otps, id)
	return nil
}

func (r *memOTPRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, otp := range r.otps {
		if otp.ExpiresAt.Before(cutoff) {
			delete(r.otps, id)
			removed++
		}
	}
	return removed, nil
}

type publishCall struct {
	Room  string
	Event string
	Data  interface{}
}

type fakePublisher struct {
	mu    sync.Mutex
	calls []publishCall
}

func (p *fakePublisher) Publish(participantID, event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, publishCall{Room: participantID, Event: event, Data: data})
}

func (p *fakePublisher) callsFor(room string) []publishCall {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result []publishCall
	for _, call := range p.calls {
		if call.Room == room {
			result = append(result, call)
		}
	}
	return result
}

type fakeFileService struct {
	mu        sync.Mutex
	deleted   []string
	deleteErr error
}

func (f *fakeFileService) UploadFile(ctx context.Context, file io.Reader, fileType, folder string) (string, error) {
	return "https://storage.example.com/" + folder + "/file", nil
}

func (f *fakeFileService) DeleteFile(ctx context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, fileURL)
	return f.deleteErr
}

func (f *fakeFileService) Close() error { return nil }

type fakeAuthClient struct {
	mu         sync.Mutex
	nextUID    string
	passwords  map[string]string
	uidByEmail map[string]string
	deleted    []string
	createErr  error
}

func newFakeAuthClient() *fakeAuthClient {
	return &fakeAuthClient{
		passwords:  make(map[string]string),
		uidByEmail: make(map[string]string),
	}
}

func (f *fakeAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return "", f.createErr
	}

	uid := f.nextUID
	if uid == "" {
		uid = uuid.New().String()
	}
	f.passwords[email] = password
	f.uidByEmail[email] = uid
	return uid, nil
}

func (f *fakeAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, uid := range f.uidByEmail {
		if token == "token-"+uid {
			return uid, nil
		}
	}
	return "", fmt.Errorf("invalid token")
}

func (f *fakeAuthClient) SignInWithEmailPassword(email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.passwords[email]
	if !ok || stored != password {
		return "", fmt.Errorf("invalid credentials")
	}
	return "token-" + f.uidByEmail[email], nil
}

func (f *fakeAuthClient) UpdateUserPassword(ctx context.Context, uid, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for email, id := range f.uidByEmail {
		if id == uid {
			f.passwords[email] = newPassword
		}
	}
	return nil
}

func (f *fakeAuthClient) DeleteUser(ctx context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, uid)
	return nil
}

type sentMail struct {
	To      string
	Subject string
	HTML    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeMailer) Send(to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return fmt.Errorf("smtp unavailable")
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}
