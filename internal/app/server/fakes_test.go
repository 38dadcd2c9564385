package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"hireflow/internal/domain/accounts"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/chat"
	"hireflow/internal/domain/notifications"
	"hireflow/internal/domain/onboarding"
)

type memAccounts struct {
	mu       sync.Mutex
	accounts []accounts.Account
	hashes   map[string]string
}

func newMemAccounts() *memAccounts {
	return &memAccounts{hashes: map[string]string{}}
}

func (m *memAccounts) GetAccount(_ context.Context, id string) (accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acc := range m.accounts {
		if acc.ID == id {
			return acc, nil
		}
	}
	return accounts.Account{}, accounts.ErrNotFound
}

func (m *memAccounts) filter(keep func(accounts.Account) bool) []accounts.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []accounts.Account{}
	for _, acc := range m.accounts {
		if keep(acc) {
			out = append(out, acc)
		}
	}
	return out
}

func (m *memAccounts) ListByCreator(_ context.Context, creatorID, role string) ([]accounts.Account, error) {
	return m.filter(func(a accounts.Account) bool { return a.CreatedBy == creatorID && a.Role == role }), nil
}

func (m *memAccounts) ListExcept(_ context.Context, id string) ([]accounts.Account, error) {
	return m.filter(func(a accounts.Account) bool { return a.ID != id }), nil
}

func (m *memAccounts) ListAll(context.Context) ([]accounts.Account, error) {
	return m.filter(func(accounts.Account) bool { return true }), nil
}

// CreateAccount keeps the account only when provision succeeds, like the
// transactional store.
func (m *memAccounts) CreateAccount(ctx context.Context, acc accounts.NewAccount, hash string, provision accounts.Provision) (accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Email == acc.Email {
			return accounts.Account{}, accounts.ErrEmailExists
		}
	}
	now := time.Now()
	created := accounts.Account{
		ID:        uuid.NewString(),
		Name:      acc.Name,
		Email:     acc.Email,
		Phone:     acc.Phone,
		Role:      acc.Role,
		CreatedBy: acc.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if provision != nil {
		if err := provision(ctx, nil, created); err != nil {
			return accounts.Account{}, err
		}
	}
	m.accounts = append(m.accounts, created)
	m.hashes[created.ID] = hash
	return created, nil
}

func (m *memAccounts) FindUserByEmail(_ context.Context, email string) (auth.LoginUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acc := range m.accounts {
		if strings.EqualFold(acc.Email, email) {
			return auth.LoginUser{ID: acc.ID, Name: acc.Name, Email: acc.Email, Role: acc.Role, Password: m.hashes[acc.ID]}, nil
		}
	}
	return auth.LoginUser{}, pgx.ErrNoRows
}

type memOnboarding struct {
	mu         sync.Mutex
	records    map[string]onboarding.Record
	failCreate error
}

func newMemOnboarding() *memOnboarding {
	return &memOnboarding{records: map[string]onboarding.Record{}}
}

func (m *memOnboarding) CreateTx(ctx context.Context, _ pgx.Tx, rec onboarding.Record) (onboarding.Record, error) {
	return m.Create(ctx, rec)
}

func (m *memOnboarding) Create(_ context.Context, rec onboarding.Record) (onboarding.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failCreate; err != nil {
		m.failCreate = nil
		return onboarding.Record{}, err
	}
	if _, ok := m.records[rec.EmployeeID]; ok {
		return onboarding.Record{}, onboarding.ErrDuplicateRecord
	}
	m.records[rec.EmployeeID] = rec
	return rec, nil
}

func (m *memOnboarding) Get(_ context.Context, employeeID string) (onboarding.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[employeeID]
	if !ok {
		return onboarding.Record{}, onboarding.ErrNotFound
	}
	return rec, nil
}

func (m *memOnboarding) Mutate(_ context.Context, employeeID string, init func() onboarding.Record, apply func(*onboarding.Record) error) (onboarding.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[employeeID]
	if !ok {
		if init == nil {
			return onboarding.Record{}, onboarding.ErrNotFound
		}
		rec = init()
	}
	rec.UploadedDocs = append([]onboarding.UploadedDoc{}, rec.UploadedDocs...)
	rec.OtherDocs = append([]onboarding.OtherDoc{}, rec.OtherDocs...)
	if err := apply(&rec); err != nil {
		return onboarding.Record{}, err
	}
	m.records[employeeID] = rec
	return rec, nil
}

func (m *memOnboarding) Summaries(_ context.Context, ids []string) (map[string]onboarding.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]onboarding.Summary{}
	for _, id := range ids {
		if rec, ok := m.records[id]; ok {
			out[id] = onboarding.Summary{CompletionPercent: rec.CompletionPercent, ExperienceLevel: rec.ExperienceLevel}
		}
	}
	return out, nil
}

type memChat struct {
	mu       sync.Mutex
	messages []chat.Message
}

func (m *memChat) Insert(_ context.Context, senderID, receiverID, message string) (chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := chat.Message{ID: uuid.NewString(), SenderID: senderID, ReceiverID: receiverID, Message: message, Timestamp: time.Now()}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memChat) Thread(_ context.Context, a, b string, page chat.Page) ([]chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []chat.Message{}
	for _, msg := range m.messages {
		if (msg.SenderID == a && msg.ReceiverID == b) || (msg.SenderID == b && msg.ReceiverID == a) {
			out = append(out, msg)
		}
	}
	if page.Limit > 0 {
		start := min(page.Offset, len(out))
		out = out[start:min(start+page.Limit, len(out))]
	}
	return out, nil
}

func (m *memChat) MarkRead(_ context.Context, readerID, counterpartID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.messages {
		if m.messages[i].SenderID == counterpartID && m.messages[i].ReceiverID == readerID && !m.messages[i].Read {
			m.messages[i].Read = true
			n++
		}
	}
	return n, nil
}

func (m *memChat) UnreadBySender(_ context.Context, receiverID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{}
	for _, msg := range m.messages {
		if msg.ReceiverID == receiverID && !msg.Read {
			out[msg.SenderID]++
		}
	}
	return out, nil
}

type memNotifications struct {
	mu    sync.Mutex
	items []notifications.Notification
}

func (m *memNotifications) CreateNotification(_ context.Context, userID, ntype, title, body string) (notifications.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := notifications.Notification{ID: fmt.Sprintf("n%d", len(m.items)+1), UserID: userID, Type: ntype, Title: title, Body: body, CreatedAt: time.Now()}
	m.items = append(m.items, n)
	return n, nil
}

func (m *memNotifications) UserEmail(context.Context, string) (string, error) {
	return "", nil
}

func (m *memNotifications) ListNotifications(_ context.Context, userID string, limit, offset int) ([]notifications.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []notifications.Notification{}
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			out = append(out, m.items[i])
		}
	}
	start := min(offset, len(out))
	return out[start:min(start+limit, len(out))], nil
}

func (m *memNotifications) CountNotifications(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, item := range m.items {
		if item.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memNotifications) MarkRead(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for i := range m.items {
		if m.items[i].UserID == userID && m.items[i].ID == id {
			m.items[i].ReadAt = &now
		}
	}
	return nil
}
