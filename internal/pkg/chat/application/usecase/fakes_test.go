package usecase

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/imogoapp/whatsapp-webhook/internal/infrastructure/realtime"
	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

// fakeRepo is an in-memory ChatRepository for use case tests.
type fakeRepo struct {
	mu sync.Mutex

	webhooks  []json.RawMessage
	sessions  map[string]*chat.Session // by session id
	messages  []chat.SessionMessage
	contacts  map[string]*chat.Contact // by wa_id|phone_number_id
	settings  map[string]*chat.LineSettings
	nextMsgID int64

	failFindActive  error
	failCreate      error
	failAppend      error
	failUpsert      error
	createSessionCt int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sessions: make(map[string]*chat.Session),
		contacts: make(map[string]*chat.Contact),
		settings: make(map[string]*chat.LineSettings),
	}
}

var _ repository.ChatRepository = (*fakeRepo)(nil)

func (f *fakeRepo) SaveWebhook(ctx context.Context, payload json.RawMessage) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.webhooks = append(f.webhooks, payload)
	return int64(len(f.webhooks)), nil
}

func (f *fakeRepo) FindActiveSession(ctx context.Context, key chat.ConversationKey) (*chat.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFindActive != nil {
		return nil, f.failFindActive
	}
	for _, s := range f.sessions {
		if s.Active && s.WaID == key.WaID && s.WaIDReceived == key.WaIDReceived && s.PhoneNumberID == key.PhoneNumberID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CreateSession(ctx context.Context, s chat.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	cp := s
	f.sessions[s.ID] = &cp
	f.createSessionCt++
	return nil
}

func (f *fakeRepo) DeactivateSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[sessionID]; ok {
		s.Active = false
	}
	for i := range f.messages {
		if f.messages[i].SessionID == sessionID {
			f.messages[i].Active = false
		}
	}
	return nil
}

func (f *fakeRepo) AppendMessage(ctx context.Context, m chat.SessionMessage) (*chat.SessionMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAppend != nil {
		return nil, f.failAppend
	}
	f.nextMsgID++
	m.ID = f.nextMsgID
	f.messages = append(f.messages, m)
	cp := m
	return &cp, nil
}

func (f *fakeRepo) UpdateMessageStatusByWamID(ctx context.Context, wamID string, status chat.MessageStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].WamID != nil && *f.messages[i].WamID == wamID {
			f.messages[i].Status = status
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) UpdateMessageStatus(ctx context.Context, messageID int64, status chat.MessageStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].ID == messageID {
			f.messages[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) MarkBotReplied(ctx context.Context, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].ID == messageID {
			f.messages[i].BotReplied = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) UpdateFlowState(ctx context.Context, messageID int64, state json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].ID == messageID {
			f.messages[i].FlowState = state
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) UpsertContact(ctx context.Context, c chat.Contact) (*chat.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpsert != nil {
		return nil, f.failUpsert
	}
	key := c.WaID + "|" + c.PhoneNumberID
	if existing, ok := f.contacts[key]; ok {
		existing.Name = c.Name
		existing.LastMessageEpoch = c.LastMessageEpoch
		cp := *existing
		return &cp, nil
	}
	c.ID = int64(len(f.contacts) + 1)
	cp := c
	f.contacts[key] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRepo) GetContact(ctx context.Context, contactID int64) (*chat.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contacts {
		if c.ID == contactID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepo) GetContactsByPhoneNumber(ctx context.Context, phoneNumberID string, skip, limit int) ([]chat.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Contact
	for _, c := range f.contacts {
		if c.PhoneNumberID == phoneNumberID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateContactName(ctx context.Context, contactID int64, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contacts {
		if c.ID == contactID {
			c.Name = name
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) SetContactBot(ctx context.Context, contactID int64, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contacts {
		if c.ID == contactID {
			c.ActivateBot = enabled
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) SetContactAutomaticMessage(ctx context.Context, contactID int64, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contacts {
		if c.ID == contactID {
			c.ActivateAutoMsg = enabled
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) GetLineSettings(ctx context.Context, phoneNumberID string) (*chat.LineSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.settings[phoneNumberID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) GetUserSessions(ctx context.Context, waID, phoneNumberID string, limit int) ([]chat.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Session
	for _, s := range f.sessions {
		if s.WaID == waID && s.PhoneNumberID == phoneNumberID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetSessionMessages(ctx context.Context, sessionID string) ([]chat.SessionMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.SessionMessage
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetActiveChats(ctx context.Context, phoneNumberID string, skip, limit int) ([]chat.ChatSummary, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) activeSessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sessions {
		if s.Active {
			n++
		}
	}
	return n
}

// fakePublisher records published events per topic.
type fakePublisher struct {
	mu     sync.Mutex
	events map[realtime.Topic][]any
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{events: make(map[realtime.Topic][]any)}
}

var _ Publisher = (*fakePublisher)(nil)

func (p *fakePublisher) Publish(topic realtime.Topic, event any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[topic] = append(p.events[topic], event)
}

func (p *fakePublisher) count(topic realtime.Topic) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events[topic])
}

func (p *fakePublisher) last(topic realtime.Topic) any {
	p.mu.Lock()
	defer p.mu.Unlock()
	evts := p.events[topic]
	if len(evts) == 0 {
		return nil
	}
	return evts[len(evts)-1]
}
