package service

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
	internal_errors "github.com/JiggaBS/AutoAndrewProject-sub000/internal/errors"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/policy"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/realtime"
)

// Session is the live view of one thread for one viewer: the in-memory
// ordered message list the UI renders, fed by an initial fetch plus realtime
// inserts, with optimistic appends reconciled against their server echoes.
//
// One Session per open thread view; Close tears the subscription down
// deterministically.
type Session struct {
	mu sync.Mutex

	requestId domain.RequestId
	role      domain.Role
	userId    domain.UserId
	status    domain.RequestStatus

	thread *Thread
	sub    *realtime.Subscription

	messages []*domain.Message          // authoritative, (created, id) order
	seen     map[domain.MsgId]struct{}  // dedupe against redelivery
	pending  map[string]*domain.Message // correlation id -> optimistic entry
	unread   int
}

func OpenSession(ctx context.Context, thread *Thread, requestId domain.RequestId, role domain.Role, userId domain.UserId) (*Session, error) {
	req, err := thread.storage.GetRequest(requestId)
	if err != nil {
		return nil, err
	}

	s := &Session{
		requestId: requestId,
		role:      role,
		userId:    userId,
		status:    req.Status,
		thread:    thread,
		seen:      make(map[domain.MsgId]struct{}),
		pending:   make(map[string]*domain.Message),
	}

	listed, err := thread.List(ctx, requestId, role, userId)
	if err != nil {
		return nil, err
	}
	for _, msg := range listed.Messages {
		s.insertLocked(msg)
	}

	sub, err := thread.Subscribe(requestId, role, userId, s.onInsert)
	if err != nil {
		return nil, err
	}
	s.sub = sub
	return s, nil
}

// Close stops realtime delivery. Deliveries already in flight land on a
// dead handle and are ignored.
func (s *Session) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
}

// Send appends a message optimistically and reconciles it with the server
// record. The local policy check fails fast before any I/O. On failure the
// optimistic entry is removed and the error surfaced; no automatic retry,
// the caller keeps the composed content for a manual one.
func (s *Session) Send(ctx context.Context, body string, attachments []domain.Attachment) (*domain.Message, error) {
	s.mu.Lock()
	if !policy.CanWrite(s.role, s.status) {
		s.mu.Unlock()
		return nil, internal_errors.MessagingLocked("Messaging is locked for this request")
	}

	// correlation id is local-only: it tracks the optimistic entry and is
	// never the message's real identity
	correlation := uuid.NewString()
	optimistic := &domain.Message{
		RequestId:   s.requestId,
		Sender:      s.role,
		SenderId:    &s.userId,
		Body:        body,
		Attachments: attachments,
	}
	s.pending[correlation] = optimistic
	s.mu.Unlock()

	msg, err := s.thread.Send(ctx, domain.MessageCreationData{
		RequestId:   s.requestId,
		Sender:      s.role,
		SenderId:    &s.userId,
		Body:        body,
		Attachments: attachments,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, correlation)
	if err != nil {
		return nil, err
	}
	s.insertLocked(msg)
	return msg, nil
}

// MarkRead clears the viewer's unread counter and stamps the counterpart's
// messages server-side.
func (s *Session) MarkRead() error {
	if err := s.thread.MarkRead(s.requestId, s.role, s.userId); err != nil {
		return err
	}
	s.mu.Lock()
	s.unread = 0
	s.mu.Unlock()
	return nil
}

// Refresh refetches the whole thread. This is the catch-up strategy for
// realtime gaps: the bus does not replay inserts missed during an outage,
// so a visibility-regain does a full list instead.
func (s *Session) Refresh(ctx context.Context) error {
	listed, err := s.thread.List(ctx, s.requestId, s.role, s.userId)
	if err != nil {
		return err
	}
	req, err := s.thread.storage.GetRequest(s.requestId)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = req.Status
	s.messages = nil
	s.seen = make(map[domain.MsgId]struct{})
	for _, msg := range listed.Messages {
		s.insertLocked(msg)
	}
	return nil
}

// Messages returns the render sequence: authoritative messages in
// (created, id) order followed by still-pending optimistic entries.
func (s *Session) Messages() []*domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Message, 0, len(s.messages)+len(s.pending))
	out = append(out, s.messages...)
	for _, opt := range s.pending {
		out = append(out, opt)
	}
	return out
}

func (s *Session) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// onInsert handles a bus delivery: dedupe by id, reconcile own-role echoes
// against optimistic entries, keep ordering, bump unread for counterpart
// messages.
func (s *Session) onInsert(msg *domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[msg.Id]; ok {
		return
	}

	// an echo of our own optimistic send replaces the pending entry rather
	// than appearing next to it
	if msg.Sender == s.role {
		for correlation, opt := range s.pending {
			if opt.Body == msg.Body && len(opt.Attachments) == len(msg.Attachments) {
				delete(s.pending, correlation)
				break
			}
		}
	} else if msg.Sender == s.role.Counterpart() || msg.Sender == domain.RoleSystem {
		s.unread++
	}

	s.insertLocked(msg)
}

// insertLocked places an authoritative message into (created, id) order.
// Callers hold s.mu.
func (s *Session) insertLocked(msg *domain.Message) {
	if _, ok := s.seen[msg.Id]; ok {
		return
	}
	s.seen[msg.Id] = struct{}{}

	i := sort.Search(len(s.messages), func(i int) bool {
		m := s.messages[i]
		if !m.CreatedAt.Equal(msg.CreatedAt) {
			return m.CreatedAt.After(msg.CreatedAt)
		}
		return m.Id > msg.Id
	})
	s.messages = append(s.messages, nil)
	copy(s.messages[i+1:], s.messages[i:])
	s.messages[i] = msg
}
