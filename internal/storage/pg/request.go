package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
	internal_errors "github.com/JiggaBS/AutoAndrewProject-sub000/internal/errors"
)

func (s *Storage) GetRequest(id domain.RequestId) (*domain.Request, error) {
	var req domain.Request
	err := s.db.QueryRow(`
	SELECT id, status, customer_id, customer_email, created
	FROM requests
	WHERE id = $1`, id).Scan(&req.Id, &req.Status, &req.CustomerId, &req.CustomerEmail, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("Request not found")
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	return &req, nil
}

// SetRequestStatus moves a request from one status to another. The WHERE
// clause makes the transition conditional so two admins racing the same
// update cannot both win.
func (s *Storage) SetRequestStatus(id domain.RequestId, from, to domain.RequestStatus) error {
	result, err := s.db.Exec(`
	UPDATE requests SET status = $1
	WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		return internal_errors.Validation(fmt.Sprintf("Request is no longer in status %q", from))
	}
	return nil
}
