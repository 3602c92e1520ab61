package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
	internal_errors "github.com/JiggaBS/AutoAndrewProject-sub000/internal/errors"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/policy"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/validation"
)

// ListMessages returns the full thread in (created, id) order. Attachments
// are loaded in one extra query and stitched in, so a thread fetch is always
// two round trips no matter how many messages carry files.
func (s *Storage) ListMessages(requestId domain.RequestId) ([]*domain.Message, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM requests WHERE id = $1)`, requestId).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check request: %w", err)
	}
	if !exists {
		return nil, internal_errors.NotFound("Request not found")
	}

	rows, err := s.db.Query(`
	SELECT id, request_id, sender, sender_id, body, created, read_at
	FROM messages
	WHERE request_id = $1
	ORDER BY created ASC, id ASC`, requestId)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.Message
	byId := make(map[domain.MsgId]*domain.Message)
	for rows.Next() {
		var msg domain.Message
		var senderId sql.NullString
		var readAt sql.NullTime
		if err := rows.Scan(&msg.Id, &msg.RequestId, &msg.Sender, &senderId, &msg.Body, &msg.CreatedAt, &readAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		if senderId.Valid {
			v := senderId.String
			msg.SenderId = &v
		}
		if readAt.Valid {
			t := readAt.Time
			msg.ReadAt = &t
		}
		messages = append(messages, &msg)
		byId[msg.Id] = &msg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadAttachments(requestId, byId); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *Storage) loadAttachments(requestId domain.RequestId, byId map[domain.MsgId]*domain.Message) error {
	rows, err := s.db.Query(`
	SELECT a.id, a.message_id, a.storage_path, a.name, a.mime_type, a.size_bytes, a.image_width, a.image_height
	FROM attachments a
	JOIN messages m ON m.id = a.message_id
	WHERE m.request_id = $1
	ORDER BY a.id ASC`, requestId)
	if err != nil {
		return fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var att domain.Attachment
		var msgId domain.MsgId
		if err := rows.Scan(&att.Id, &msgId, &att.StoragePath, &att.Name, &att.MimeType, &att.SizeBytes, &att.ImageWidth, &att.ImageHeight); err != nil {
			return fmt.Errorf("failed to scan attachment row: %w", err)
		}
		if msg, ok := byId[msgId]; ok {
			msg.Attachments = append(msg.Attachments, att)
		}
	}
	return rows.Err()
}

// AppendMessage inserts a message and its attachment rows in one
// transaction. The access policy and body contract are re-checked here
// against the request's current status; the service-level checks are only a
// fail-fast courtesy and these are authoritative.
func (s *Storage) AppendMessage(data domain.MessageCreationData) (*domain.Message, error) {
	if err := validation.ValidateBody(data.Body, len(data.Attachments), domain.MaxBodyChars); err != nil {
		return nil, internal_errors.Validation(err.Error())
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // ignored once the tx is committed

	var status domain.RequestStatus
	err = tx.QueryRow(`SELECT status FROM requests WHERE id = $1 FOR UPDATE`, data.RequestId).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("Request not found")
		}
		return nil, fmt.Errorf("failed to load request status: %w", err)
	}

	if data.Sender != domain.RoleSystem && !policy.CanWrite(data.Sender, status) {
		return nil, internal_errors.MessagingLocked("Messaging is locked for this request")
	}

	createdTs := time.Now().UTC().Round(time.Microsecond) // database rounds to microsecond anyway
	msg := domain.Message{
		RequestId: data.RequestId,
		Sender:    data.Sender,
		SenderId:  data.SenderId,
		Body:      data.Body,
		CreatedAt: createdTs,
	}
	var senderId sql.NullString
	if data.SenderId != nil {
		senderId = sql.NullString{String: *data.SenderId, Valid: true}
	}
	err = tx.QueryRow(`
	INSERT INTO messages(request_id, sender, sender_id, body, created)
	VALUES($1, $2, $3, $4, $5)
	RETURNING id`,
		data.RequestId, data.Sender, senderId, data.Body, createdTs).Scan(&msg.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	for _, att := range data.Attachments {
		stored := att
		err = tx.QueryRow(`
		INSERT INTO attachments(message_id, storage_path, name, mime_type, size_bytes, image_width, image_height)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
			msg.Id, att.StoragePath, att.Name, att.MimeType, att.SizeBytes, att.ImageWidth, att.ImageHeight).Scan(&stored.Id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert attachment: %w", err)
		}
		msg.Attachments = append(msg.Attachments, stored)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &msg, nil
}

// MarkThreadRead stamps every still-unread message authored by the reader's
// counterpart. System messages carry no read receipt: read_at is a single
// stamp and system messages have two potential readers. Re-invoking after
// everything is read matches zero rows and is a no-op success; read_at moves
// from NULL to a value exactly once.
func (s *Storage) MarkThreadRead(requestId domain.RequestId, reader domain.Role) error {
	if reader != domain.RoleAdmin && reader != domain.RoleUser {
		return internal_errors.Validation("Reader role must be admin or user")
	}
	_, err := s.db.Exec(`
	UPDATE messages SET read_at = now()
	WHERE request_id = $1 AND sender = $2 AND read_at IS NULL`,
		requestId, reader.Counterpart())
	if err != nil {
		return fmt.Errorf("failed to mark thread read: %w", err)
	}
	return nil
}

// UnreadCount counts counterpart messages the reader has not seen yet.
func (s *Storage) UnreadCount(requestId domain.RequestId, reader domain.Role) (int, error) {
	var n int
	err := s.db.QueryRow(`
	SELECT COUNT(*) FROM messages
	WHERE request_id = $1 AND sender = $2 AND read_at IS NULL`,
		requestId, reader.Counterpart()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread: %w", err)
	}
	return n, nil
}
