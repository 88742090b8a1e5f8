package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/binay-das/draw-it/internal/app/db"
)

// PGStore implements Gateway on top of a pgx connection pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore around the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// UpsertRoom inserts the room record, treating a unique violation on the slug as
// "already exists". Racing creators both succeed; whichever insert lands first
// owns the admin column permanently.
func (s *PGStore) UpsertRoom(ctx context.Context, slug string, adminID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO rooms (id, slug, admin_id) VALUES ($1, $2, $3)`,
		uuid.New().String(), slug, adminID,
	)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("upsert room %q: %w", slug, err)
	}

	return nil
}

// AppendMessage resolves the room id for the slug and appends one chat row.
func (s *PGStore) AppendMessage(ctx context.Context, slug string, userID string, payload string) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO chats (id, room_id, user_id, message)
		 SELECT $1, r.id, $2, $3 FROM rooms r WHERE r.slug = $4`,
		uuid.New().String(), userID, payload, slug,
	)
	if err != nil {
		return fmt.Errorf("append message to room %q: %w", slug, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("append message to room %q: %w", slug, ErrRoomNotFound)
	}

	return nil
}

// ListMessages returns the room's chat payloads ordered by insertion time.
func (s *PGStore) ListMessages(ctx context.Context, slug string) ([]string, error) {
	var roomID string
	err := s.pool.QueryRow(ctx, `SELECT id::text FROM rooms WHERE slug = $1`, slug).Scan(&roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("look up room %q: %w", slug, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT message FROM chats WHERE room_id = $1 ORDER BY created_at ASC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages for room %q: %w", slug, err)
	}
	defer rows.Close()

	var messages []string
	for rows.Next() {
		var message string
		if err := rows.Scan(&message); err != nil {
			return nil, fmt.Errorf("scan message for room %q: %w", slug, err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages for room %q: %w", slug, err)
	}

	return messages, nil
}
