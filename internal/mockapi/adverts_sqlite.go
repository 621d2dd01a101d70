package mockapi

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
)

// Advert slots stored per row.
const (
	slotVertical   = "vertical"
	slotHorizontal = "horizontal"
)

// AdvertStore persists the advert lists of each email type in SQLite.
type AdvertStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenAdvertStore opens (creating if needed) the advert database at path.
// ":memory:" keeps everything in a single in-process connection.
func OpenAdvertStore(ctx context.Context, path string) (*AdvertStore, error) {
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create advert db dir: %w", err)
		}
	}
	// modernc.org/sqlite registers the "sqlite" driver.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open advert db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("advert db pragma: %w", err)
		}
	}
	store := &AdvertStore{db: db, now: time.Now}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *AdvertStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS adverts (
			advert_id TEXT PRIMARY KEY,
			email_type TEXT NOT NULL,
			slot TEXT NOT NULL,
			position INTEGER NOT NULL,
			ord INTEGER NOT NULL,
			url TEXT NOT NULL,
			image_url TEXT NOT NULL,
			saved_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS adverts_by_type ON adverts(email_type, slot, position);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate advert db: %w", err)
		}
	}
	return nil
}

// Save replaces every stored advert of set.EmailType in one transaction.
func (s *AdvertStore) Save(ctx context.Context, set model.AdvertSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save adverts: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM adverts WHERE email_type = ?`, set.EmailType); err != nil {
		return fmt.Errorf("clear adverts: %w", err)
	}
	savedAt := s.now().UnixMilli()
	insert := func(slot string, items []model.Item) error {
		for i, it := range items {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO adverts (advert_id, email_type, slot, position, ord, url, image_url, saved_at_unixms)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				uuid.NewString(), set.EmailType, slot, i, it.Order,
				it.Get(model.FieldURL), it.Get(model.FieldImageURL), savedAt,
			)
			if err != nil {
				return fmt.Errorf("insert %s advert: %w", slot, err)
			}
		}
		return nil
	}
	if err := insert(slotVertical, set.VerticalAdverts); err != nil {
		return err
	}
	if err := insert(slotHorizontal, set.HorizontalAdverts); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit adverts: %w", err)
	}
	return nil
}

// Load returns the saved adverts for emailType; unknown types yield empty lists.
func (s *AdvertStore) Load(ctx context.Context, emailType string) (model.AdvertSet, error) {
	set := model.AdvertSet{
		EmailType:         emailType,
		VerticalAdverts:   []model.Item{},
		HorizontalAdverts: []model.Item{},
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot, ord, url, image_url FROM adverts WHERE email_type = ? ORDER BY slot, position`,
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

// Close releases the database.
func (s *AdvertStore) Close() error {
	return s.db.Close()
}
