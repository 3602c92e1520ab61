package domain

import "time"

const MaxBodyChars = 2000

type Message struct {
	Id          MsgId        `json:"id"`
	RequestId   RequestId    `json:"request_id"`
	Sender      Role         `json:"sender"`
	SenderId    *UserId      `json:"sender_id,omitempty"` // nil for system messages
	Body        MsgBody      `json:"body"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	ReadAt      *time.Time   `json:"read_at,omitempty"`
}

// to iterate thru layers: handler -> service -> storage
type MessageCreationData struct {
	RequestId   RequestId
	Sender      Role
	SenderId    *UserId
	Body        MsgBody
	Attachments []Attachment
}

// Thread is the full conversation of one request. There is no separate
// thread row; the request id is the thread identity.
type Thread struct {
	RequestId RequestId  `json:"request_id"`
	Messages  []*Message `json:"messages"`
}
