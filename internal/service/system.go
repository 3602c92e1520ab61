package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/realtime"
)

// Notifier is the outbound email collaborator. Delivery is best-effort;
// callers log failures and move on.
type Notifier interface {
	Send(recipientEmail, subject, body string) error
}

// SystemInjector writes system-authored messages into a thread on behalf of
// administrative actions. It bypasses the access policy: system messages are
// allowed in every request status.
type SystemInjector struct {
	storage MessageStorage
	bus     *realtime.Bus
}

func NewSystemInjector(storage MessageStorage, bus *realtime.Bus) *SystemInjector {
	return &SystemInjector{storage, bus}
}

func (i *SystemInjector) Inject(requestId domain.RequestId, body string) (*domain.Message, error) {
	msg, err := i.storage.AppendMessage(domain.MessageCreationData{
		RequestId: requestId,
		Sender:    domain.RoleSystem,
		Body:      body,
	})
	if err != nil {
		return nil, err
	}
	i.bus.Publish(msg)
	return msg, nil
}

// AdminEvents turns administrative actions (offer set, appointment set) into
// their side effects: a system message in the thread and an email to the
// customer. Both are fire-and-forget relative to the admin's save: either,
// both, or neither may succeed, and the save stands regardless.
type AdminEvents struct {
	injector *SystemInjector
	notifier Notifier
	storage  MessageStorage
}

func NewAdminEvents(injector *SystemInjector, notifier Notifier, storage MessageStorage) *AdminEvents {
	return &AdminEvents{injector, notifier, storage}
}

// OfferSet echoes a final offer into the thread and notifies the customer.
// Always returns nil: failures are logged, never propagated, so the offer
// save that triggered this can't be rolled back by a messaging hiccup.
func (a *AdminEvents) OfferSet(requestId domain.RequestId, amount int64) error {
	body := fmt.Sprintf("Final offer set: %s", FormatEuro(amount))
	a.fanOut(requestId, body, "Your offer is ready", body)
	return nil
}

// AppointmentSet echoes a scheduled appointment into the thread.
func (a *AdminEvents) AppointmentSet(requestId domain.RequestId, when time.Time) error {
	body := fmt.Sprintf("Appointment scheduled for %s", when.Format("Monday, 2 January 2006 at 15:04"))
	a.fanOut(requestId, body, "Your appointment is scheduled", body)
	return nil
}

func (a *AdminEvents) fanOut(requestId domain.RequestId, msgBody, subject, emailBody string) {
	if _, err := a.injector.Inject(requestId, msgBody); err != nil {
		slog.Error("system message injection failed", "request_id", requestId, "err", err)
	}

	req, err := a.storage.GetRequest(requestId)
	if err != nil {
		slog.Error("email notification skipped, request lookup failed", "request_id", requestId, "err", err)
		return
	}
	if err := a.notifier.Send(req.CustomerEmail, subject, emailBody); err != nil {
		slog.Error("email notification failed", "request_id", requestId, "err", err)
	}
}

// FormatEuro renders cents-free euro amounts with thousands separators,
// matching the storefront's price formatting.
func FormatEuro(amount int64) string {
	n := amount
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-€" + s
	}
	return "€" + s
}
