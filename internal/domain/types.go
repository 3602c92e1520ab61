package domain

type (
	RequestId = int64
	MsgId     = int64
	UserId    = string // subject claim of the identity provider

	MsgBody     = string
	StoragePath = string
)

// Role is who authored a message or is asking for access.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser || r == RoleSystem
}

// Counterpart returns the other human participant of a thread.
// System has no counterpart and maps to itself.
func (r Role) Counterpart() Role {
	switch r {
	case RoleAdmin:
		return RoleUser
	case RoleUser:
		return RoleAdmin
	}
	return r
}

// Principal is the authenticated caller derived from the access token.
type Principal struct {
	Id    UserId
	Email string
	Role  Role
}

// RequestStatus is the lifecycle state of a valuation request.
// Messaging derives write permissions from it, see the policy package.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusContacted RequestStatus = "contacted"
	StatusCompleted RequestStatus = "completed"
	StatusRejected  RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusContacted, StatusCompleted, StatusRejected:
		return true
	}
	return false
}
