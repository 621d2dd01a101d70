package mockapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
)

// Adverts persists the advert lists of each email type.
type Adverts interface {
	Save(ctx context.Context, set model.AdvertSet) error
	Load(ctx context.Context, emailType string) (model.AdvertSet, error)
	Close() error
}

// OpenAdverts picks the advert backend from target: a postgres:// URL opens
// PostgreSQL, anything else is a SQLite path.
func OpenAdverts(ctx context.Context, target string) (Adverts, error) {
	if isPostgresURL(target) {
		pool, err := pgxpool.New(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("connect advert db: %w", err)
		}
		store := NewPostgresAdverts(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate advert db: %w", err)
		}
		return store, nil
	}
	return OpenAdvertStore(ctx, target)
}

func isPostgresURL(target string) bool {
	t := strings.ToLower(strings.TrimSpace(target))
	return strings.HasPrefix(t, "postgres://") || strings.HasPrefix(t, "postgresql://")
}

// PostgresAdverts persists adverts in PostgreSQL.
type PostgresAdverts struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresAdverts wraps an open pool.
func NewPostgresAdverts(pool *pgxpool.Pool) *PostgresAdverts {
	return &PostgresAdverts{pool: pool, now: time.Now}
}

// EnsureSchema creates the adverts table when it does not already exist.
func (s *PostgresAdverts) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS adverts (
	advert_id   TEXT PRIMARY KEY,
	email_type  TEXT NOT NULL,
	slot        TEXT NOT NULL,
	position    INTEGER NOT NULL,
	ord         INTEGER NOT NULL,
	url         TEXT NOT NULL DEFAULT '',
	image_url   TEXT NOT NULL DEFAULT '',
	saved_at    TIMESTAMPTZ NOT NULL
)`
	const index = `CREATE INDEX IF NOT EXISTS adverts_by_type ON adverts (email_type, slot, position)`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, index)
	return err
}

// Save replaces every stored advert of set.EmailType in one transaction.
func (s *PostgresAdverts) Save(ctx context.Context, set model.AdvertSet) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save adverts: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM adverts WHERE email_type = $1`, set.EmailType); err != nil {
		return fmt.Errorf("clear adverts: %w", err)
	}
	const insert = `
INSERT INTO adverts (advert_id, email_type, slot, position, ord, url, image_url, saved_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	savedAt := s.now().UTC()
	for _, group := range []struct {
		slot  string
		items []model.Item
	}{
		{slotVertical, set.VerticalAdverts},
		{slotHorizontal, set.HorizontalAdverts},
	} {
		for i, it := range group.items {
			if _, err = tx.Exec(ctx, insert,
				uuid.NewString(), set.EmailType, group.slot, i, it.Order,
				it.Get(model.FieldURL), it.Get(model.FieldImageURL), savedAt,
			); err != nil {
				return fmt.Errorf("insert %s advert: %w", group.slot, err)
			}
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit adverts: %w", err)
	}
	return nil
}

// Load returns the saved adverts for emailType; unknown types yield empty lists.
func (s *PostgresAdverts) Load(ctx context.Context, emailType string) (model.AdvertSet, error) {
	set := model.AdvertSet{
		EmailType:         emailType,
		VerticalAdverts:   []model.Item{},
		HorizontalAdverts: []model.Item{},
	}
	rows, err := s.pool.Query(ctx,
		`SELECT slot, ord, url, image_url FROM adverts WHERE email_type = $1 ORDER BY slot, position`,
		emailType,
	)
	if err != nil {
		return set, fmt.Errorf("query adverts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			slot, link, image string
			order             int
		)
		if err := rows.Scan(&slot, &order, &link, &image); err != nil {
			return set, fmt.Errorf("scan advert: %w", err)
		}
		it := model.NewItem(order, model.FieldURL, link, model.FieldImageURL, image)
		if slot == slotHorizontal {
			set.HorizontalAdverts = append(set.HorizontalAdverts, it)
			continue
		}
		set.VerticalAdverts = append(set.VerticalAdverts, it)
	}
	if err := rows.Err(); err != nil {
		return set, fmt.Errorf("iterate adverts: %w", err)
	}
	return set, nil
}

// Close releases the pool.
func (s *PostgresAdverts) Close() error {
	s.pool.Close()
	return nil
}
