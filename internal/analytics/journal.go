package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HerbHall/tourstream/internal/event"
	"github.com/HerbHall/tourstream/internal/store"
)

// ErrInvalidLimit is returned by Recent for a non-positive limit.
var ErrInvalidLimit = errors.New("limit must be positive")

// Entry is one journaled analytics event.
type Entry struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Attrs      map[string]any `json:"attrs"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// Count is the number of journaled events with one name.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Journal appends analytics events delivered by the event bus to SQLite.
type Journal struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// JournalOption configures a Journal.
type JournalOption func(*Journal)

// WithClock overrides the time source used for events without a timestamp.
func WithClock(now func() time.Time) JournalOption {
	return func(j *Journal) { j.now = now }
}

// NewJournal runs the journal migrations on s.
func NewJournal(ctx context.Context, s *store.SQLiteStore, logger *zap.Logger, opts ...JournalOption) (*Journal, error) {
	if err := s.Migrate(ctx, "analytics", journalMigrations); err != nil {
		return nil, fmt.Errorf("analytics journal migrations: %w", err)
	}
	j := &Journal{db: s.DB(), logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Attach subscribes the journal to analytics topics on sub.
func (j *Journal) Attach(sub event.Subscriber) (unsubscribe func()) {
	return sub.SubscribeAll(j.handle)
}

func (j *Journal) handle(ctx context.Context, e event.Event) {
	if !IsAnalyticsTopic(e.Topic) {
		return
	}
	p, ok := e.Payload.(Payload)
	if !ok {
		j.logger.Warn("unexpected analytics payload", zap.String("topic", e.Topic))
		return
	}
	at := e.Timestamp
	if at.IsZero() {
		at = j.now()
	}
	if _, err := j.Append(ctx, p.Name, p.Attrs, at); err != nil {
		j.logger.Error("failed to journal analytics event",
			zap.String("event", p.Name),
			zap.Error(err),
		)
	}
}

// Append stores one event and returns its generated id.
func (j *Journal) Append(ctx context.Context, name string, attrs map[string]any, at time.Time) (string, error) {
	if attrs == nil {
		attrs = map[string]any{}
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("encode attrs for %q: %w", name, err)
	}
	id := uuid.NewString()
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO analytics_events (id, name, attrs, recorded_at) VALUES (?, ?, ?, ?)`,
		id, name, string(raw), at.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert analytics event %q: %w", name, err)
	}
	return id, nil
}

// Summary returns event counts by name, most frequent first.
func (j *Journal) Summary(ctx context.Context) ([]Count, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT name, COUNT(*) AS n FROM analytics_events
		GROUP BY name ORDER BY n DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("summarize analytics events: %w", err)
	}
	defer rows.Close()

	counts := []Count{}
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scan analytics count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Recent returns up to limit events, newest first. An empty name matches all
// events.
func (j *Journal) Recent(ctx context.Context, name string, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, name, attrs, recorded_at FROM analytics_events
		WHERE ? = '' OR name = ?
		ORDER BY recorded_at DESC, rowid DESC
		LIMIT ?`, name, name, limit)
	if err != nil {
		return nil, fmt.Errorf("list analytics events: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e   Entry
			raw string
		)
		if err := rows.Scan(&e.ID, &e.Name, &raw, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan analytics event: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &e.Attrs); err != nil {
			return nil, fmt.Errorf("decode attrs of %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var journalMigrations = []store.Migration{
	{
		Version:     1,
		Description: "create analytics_events table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE analytics_events (
					id          TEXT PRIMARY KEY,
					name        TEXT     NOT NULL,
					attrs       TEXT     NOT NULL DEFAULT '{}',
					recorded_at DATETIME NOT NULL
				)`)
			return err
		},
	},
	{
		Version:     2,
		Description: "index analytics_events by name",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX idx_analytics_events_name ON analytics_events (name, recorded_at)`)
			return err
		},
	},
}
