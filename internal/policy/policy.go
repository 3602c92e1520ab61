// Package policy derives messaging write permissions from the owning
// request's status. It is pure computation; the storage layer re-checks the
// same rule inside the append transaction, this package just lets callers
// fail fast before network I/O.
package policy

import (
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
)

// CanWrite reports whether role may append a message while the request is in
// status. Staff can always write, including to completed and rejected
// requests (refunds, explanations, rescheduling). Customers lose write
// access the moment staff picks the request up: once the status leaves
// pending, their side of the conversation is locked so a renegotiation
// cannot race an offer already being committed.
//
// System messages are injected out-of-band and never consult this check.
func CanWrite(role domain.Role, status domain.RequestStatus) bool {
	switch role {
	case domain.RoleAdmin:
		return true
	case domain.RoleUser:
		return status == domain.StatusPending
	}
	return false
}

// transitions holds the edges of the request status machine that messaging
// cares about. completed and rejected are terminal.
var transitions = map[domain.RequestStatus][]domain.RequestStatus{
	domain.StatusPending:   {domain.StatusContacted, domain.StatusRejected},
	domain.StatusContacted: {domain.StatusCompleted, domain.StatusRejected},
}

// CanTransition reports whether a request may move from one status to
// another.
func CanTransition(from, to domain.RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
