package pg

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/config"

	_ "github.com/lib/pq"
)

type Storage struct {
	db  *sql.DB
	cfg *config.Config
}

func New(cfg *config.Config) (*Storage, error) {
	slog.Info("Connecting to db")
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("Successfully connected to db")

	storage := &Storage{db, cfg}
	if err := storage.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return storage, nil
}

func Connect(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Private.Pg.Host, cfg.Private.Pg.Port, cfg.Private.Pg.User, cfg.Private.Pg.Password, cfg.Private.Pg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// Ping reports whether the database connection is healthy.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) ensureSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS requests (
		id             BIGSERIAL PRIMARY KEY,
		status         TEXT NOT NULL DEFAULT 'pending',
		customer_id    TEXT NOT NULL,
		customer_email TEXT NOT NULL,
		created        TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS messages (
		id         BIGSERIAL PRIMARY KEY,
		request_id BIGINT NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
		sender     TEXT NOT NULL,
		sender_id  TEXT,
		body       TEXT NOT NULL,
		created    TIMESTAMPTZ NOT NULL,
		read_at    TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS messages_request_order ON messages(request_id, created, id);

	CREATE TABLE IF NOT EXISTS attachments (
		id           BIGSERIAL PRIMARY KEY,
		message_id   BIGINT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		storage_path TEXT NOT NULL,
		name         TEXT NOT NULL,
		mime_type    TEXT NOT NULL,
		size_bytes   BIGINT NOT NULL,
		image_width  INT,
		image_height INT
	);
	CREATE INDEX IF NOT EXISTS attachments_message ON attachments(message_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
