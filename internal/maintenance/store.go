// Package maintenance provides read-only Postgres lookups for maintenance
// records: tickets, log entries, parts requests, and their updates. It backs
// the parse pipeline's lookup collaborators; it never writes.
package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/theflipapp/intake/internal/parse"
)

// Querier is the subset of pgx query behavior the store needs. Satisfied by
// *pgxpool.Pool and faked in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements parse.TicketLookup and parse.RecordLookup over Postgres.
// ErrNoRows maps to a nil record (semantic miss); other errors propagate.
type Store struct {
	db Querier
}

// NewStore creates a Store over the given connection.
func NewStore(db Querier) *Store {
	return &Store{db: db}
}

// OpenTicket returns the most recently created open ticket on the asset, or
// nil when none exists.
func (s *Store) OpenTicket(ctx context.Context, assetSlug string) (*parse.Ticket, error) {
	var t parse.Ticket
	err := s.db.QueryRow(ctx,
		`SELECT t.id, t.status, t.created_at, a.slug, a.display_name
		 FROM tickets t
		 JOIN assets a ON a.id = t.asset_id
		 WHERE a.slug = $1 AND t.status = 'open'
		 ORDER BY t.created_at DESC
		 LIMIT 1`, assetSlug,
	).Scan(&t.ID, &t.Status, &t.CreatedAt, &t.Asset.Slug, &t.Asset.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ticket for %s: %w", assetSlug, err)
	}
	return &t, nil
}

// Ticket returns the ticket with the given id, or nil when it no longer
// exists.
func (s *Store) Ticket(ctx context.Context, id int64) (*parse.Ticket, error) {
	var t parse.Ticket
	err := s.db.QueryRow(ctx,
		`SELECT t.id, t.status, t.created_at, a.slug, a.display_name
		 FROM tickets t
		 JOIN assets a ON a.id = t.asset_id
		 WHERE t.id = $1`, id,
	).Scan(&t.ID, &t.Status, &t.CreatedAt, &t.Asset.Slug, &t.Asset.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ticket %d: %w", id, err)
	}
	return &t, nil
}

// PartsRequest returns the parts request with the given id, or nil when it
// no longer exists.
func (s *Store) PartsRequest(ctx context.Context, id int64) (*parse.PartsRequest, error) {
	var req parse.PartsRequest
	err := s.db.QueryRow(ctx,
		`SELECT r.id, a.slug, a.display_name
		 FROM parts_requests r
		 JOIN assets a ON a.id = r.asset_id
		 WHERE r.id = $1`, id,
	).Scan(&req.ID, &req.Asset.Slug, &req.Asset.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parts request %d: %w", id, err)
	}
	return &req, nil
}

// LogEntry returns the log entry with the given id together with its parent
// ticket, when one is linked. Returns nil when the entry no longer exists.
func (s *Store) LogEntry(ctx context.Context, id int64) (*parse.LogEntry, error) {
	var (
		entry        parse.LogEntry
		ticketID     *int64
		ticketStatus *string
	)
	err := s.db.QueryRow(ctx,
		`SELECT e.id, a.slug, a.display_name, t.id, t.status
		 FROM log_entries e
		 JOIN assets a ON a.id = e.asset_id
		 LEFT JOIN tickets t ON t.id = e.ticket_id
		 WHERE e.id = $1`, id,
	).Scan(&entry.ID, &entry.Asset.Slug, &entry.Asset.DisplayName, &ticketID, &ticketStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("log entry %d: %w", id, err)
	}
	if ticketID != nil {
		entry.Ticket = &parse.Ticket{ID: *ticketID, Asset: entry.Asset}
		if ticketStatus != nil {
			entry.Ticket.Status = *ticketStatus
		}
	}
	return &entry, nil
}

// PartsRequestUpdate returns the update with the given id together with its
// parent request. Returns nil when the update no longer exists.
func (s *Store) PartsRequestUpdate(ctx context.Context, id int64) (*parse.PartsRequestUpdate, error) {
	var upd parse.PartsRequestUpdate
	err := s.db.QueryRow(ctx,
		`SELECT u.id, r.id, a.slug, a.display_name
		 FROM parts_request_updates u
		 JOIN parts_requests r ON r.id = u.request_id
		 JOIN assets a ON a.id = r.asset_id
		 WHERE u.id = $1`, id,
	).Scan(&upd.ID, &upd.Request.ID, &upd.Request.Asset.Slug, &upd.Request.Asset.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parts request update %d: %w", id, err)
	}
	return &upd, nil
}
