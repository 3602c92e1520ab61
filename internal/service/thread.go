package service

import (
	"context"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
	internal_errors "github.com/JiggaBS/AutoAndrewProject-sub000/internal/errors"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/policy"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/realtime"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/validation"
)

type MessageStorage interface {
	ListMessages(requestId domain.RequestId) ([]*domain.Message, error)
	AppendMessage(data domain.MessageCreationData) (*domain.Message, error)
	MarkThreadRead(requestId domain.RequestId, reader domain.Role) error
	UnreadCount(requestId domain.RequestId, reader domain.Role) (int, error)
	GetRequest(id domain.RequestId) (*domain.Request, error)
	SetRequestStatus(id domain.RequestId, from, to domain.RequestStatus) error
}

type UrlResolver interface {
	ResolveUrl(ctx context.Context, att domain.Attachment) (string, error)
}

// Thread is the server-side thread controller: ordered fetch with fresh
// attachment URLs, policy-gated append with realtime fan-out, idempotent
// read receipts and unread accounting.
type Thread struct {
	storage      MessageStorage
	resolver     UrlResolver
	bus          *realtime.Bus
	maxBodyChars int
}

func NewThread(storage MessageStorage, resolver UrlResolver, bus *realtime.Bus, maxBodyChars int) *Thread {
	return &Thread{storage, resolver, bus, maxBodyChars}
}

// List returns the thread in (created, id) order. Customers only see their
// own request's thread; staff sees any. Attachment URLs are re-derived per
// call; an unresolvable attachment keeps an empty URL instead of failing
// the fetch.
func (t *Thread) List(ctx context.Context, requestId domain.RequestId, caller domain.Role, callerId domain.UserId) (*domain.Thread, error) {
	if err := t.authorizeRead(requestId, caller, callerId); err != nil {
		return nil, err
	}

	messages, err := t.storage.ListMessages(requestId)
	if err != nil {
		return nil, err
	}

	for _, msg := range messages {
		for i := range msg.Attachments {
			url, err := t.resolver.ResolveUrl(ctx, msg.Attachments[i])
			if err != nil {
				// broken-attachment placeholder is the client's problem;
				// the message itself renders fine
				msg.Attachments[i].Url = ""
				continue
			}
			msg.Attachments[i].Url = url
		}
	}

	return &domain.Thread{RequestId: requestId, Messages: messages}, nil
}

// Send validates and appends a message. The policy check here fails fast
// before any storage round trip; the storage layer repeats it inside the
// append transaction as the authoritative gate.
func (t *Thread) Send(ctx context.Context, data domain.MessageCreationData) (*domain.Message, error) {
	if err := validation.ValidateBody(data.Body, len(data.Attachments), t.maxBodyChars); err != nil {
		return nil, internal_errors.Validation(err.Error())
	}

	req, err := t.storage.GetRequest(data.RequestId)
	if err != nil {
		return nil, err
	}
	if data.Sender == domain.RoleUser && req.CustomerId != deref(data.SenderId) {
		return nil, internal_errors.AccessDenied("Not your request")
	}
	if !policy.CanWrite(data.Sender, req.Status) {
		return nil, internal_errors.MessagingLocked("Messaging is locked for this request")
	}

	msg, err := t.storage.AppendMessage(data)
	if err != nil {
		return nil, err
	}

	t.bus.Publish(msg)
	return msg, nil
}

// MarkRead stamps the counterpart's unread messages. Safe to repeat and to
// interleave: the first call mutates, later ones are no-op successes.
func (t *Thread) MarkRead(requestId domain.RequestId, reader domain.Role, readerId domain.UserId) error {
	if err := t.authorizeRead(requestId, reader, readerId); err != nil {
		return err
	}
	return t.storage.MarkThreadRead(requestId, reader)
}

func (t *Thread) Unread(requestId domain.RequestId, reader domain.Role, readerId domain.UserId) (int, error) {
	if err := t.authorizeRead(requestId, reader, readerId); err != nil {
		return 0, err
	}
	return t.storage.UnreadCount(requestId, reader)
}

// Subscribe opens a realtime handle for the thread after the same read
// authorization as List.
func (t *Thread) Subscribe(requestId domain.RequestId, caller domain.Role, callerId domain.UserId, onInsert func(*domain.Message)) (*realtime.Subscription, error) {
	if err := t.authorizeRead(requestId, caller, callerId); err != nil {
		return nil, err
	}
	return t.bus.Subscribe(requestId, onInsert), nil
}

// TransitionStatus moves the owning request along the status machine.
// Invalid edges are rejected before touching storage.
func (t *Thread) TransitionStatus(requestId domain.RequestId, to domain.RequestStatus) error {
	if !to.Valid() {
		return internal_errors.Validation("Unknown status")
	}
	req, err := t.storage.GetRequest(requestId)
	if err != nil {
		return err
	}
	if !policy.CanTransition(req.Status, to) {
		return internal_errors.Validation("Transition not allowed from current status")
	}
	return t.storage.SetRequestStatus(requestId, req.Status, to)
}

// Authorize checks that the caller may see the thread at all. Handlers use
// it to reject before side effects like a websocket upgrade or an upload.
func (t *Thread) Authorize(requestId domain.RequestId, caller domain.Role, callerId domain.UserId) error {
	return t.authorizeRead(requestId, caller, callerId)
}

func (t *Thread) authorizeRead(requestId domain.RequestId, caller domain.Role, callerId domain.UserId) error {
	req, err := t.storage.GetRequest(requestId)
	if err != nil {
		return err
	}
	if caller == domain.RoleAdmin {
		return nil
	}
	if caller == domain.RoleUser && req.CustomerId == callerId {
		return nil
	}
	return internal_errors.AccessDenied("Not your request")
}

func deref(s *domain.UserId) domain.UserId {
	if s == nil {
		return ""
	}
	return *s
}
