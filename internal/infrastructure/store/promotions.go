package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cartsaver/backend/internal/domain"
)

const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS promotions (
	id            TEXT PRIMARY KEY,
	product_name  TEXT NOT NULL,
	store_name    TEXT NOT NULL,
	regular_price REAL,
	sale_price    REAL NOT NULL,
	valid_from    TEXT NOT NULL,
	valid_to      TEXT NOT NULL,
	source_id     TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL DEFAULT (datetime('now')),
	UNIQUE(product_name, store_name, valid_from, valid_to)
);

CREATE INDEX IF NOT EXISTS idx_promotions_valid_to ON promotions(valid_to);
CREATE INDEX IF NOT EXISTS idx_promotions_store ON promotions(store_name);
`

// PromotionStore is the sqlite-backed repository of scraped promotion rows.
// The comparison path only reads; writes belong to the flyer import flow.
type PromotionStore struct {
	db *sql.DB
}

// Open opens (or creates) the promotions database and ensures the schema.
func Open(path string) (*PromotionStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &PromotionStore{db: db}, nil
}

// Close closes the underlying database handle.
func (s *PromotionStore) Close() error {
	return s.db.Close()
}

// SearchActive returns active promotions from the store allow-list whose
// product name matches any keyword, capped at limit.
func (s *PromotionStore) SearchActive(ctx context.Context, keywords []string, limit int) ([]domain.PromotionRecord, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 200
	}

	var likes []string
	var args []any
	for _, kw := range keywords {
		likes = append(likes, "lower(product_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(kw)+"%")
	}

	stores := make([]string, len(domain.KnownStores))
	for i, st := range domain.KnownStores {
		stores[i] = "?"
		args = append(args, st)
	}

	args = append(args, time.Now().Format(dateLayout), limit)

	query := fmt.Sprintf(`
		SELECT product_name, store_name, regular_price, sale_price,
		       valid_from, valid_to, source_id, category
		FROM promotions
		WHERE (%s)
		  AND store_name IN (%s)
		  AND valid_to >= ?
		ORDER BY sale_price ASC
		LIMIT ?`,
		strings.Join(likes, " OR "), strings.Join(stores, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var records []domain.PromotionRecord
	for rows.Next() {
		record, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SaveBatch upserts a batch of scraped promotions inside one transaction
// and returns the number written. Rows colliding on (product, store, date
// range) are replaced, which dedupes re-imports of the same flyer.
func (s *PromotionStore) SaveBatch(ctx context.Context, records []domain.PromotionRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO promotions
			(id, product_name, store_name, regular_price, sale_price,
			 valid_from, valid_to, source_id, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, r := range records {
		if r.ProductName == "" || r.SalePrice <= 0 || !domain.IsKnownStore(r.StoreName) {
			continue
		}

		var regular any
		if r.RegularPrice > 0 {
			regular = r.RegularPrice
		}

		if _, err := stmt.ExecContext(ctx,
			uuid.NewString(), r.ProductName, r.StoreName, regular, r.SalePrice,
			r.ValidFrom.Format(dateLayout), r.ValidTo.Format(dateLayout),
			r.SourceID, r.Category,
		); err != nil {
			return 0, fmt.Errorf("insert promotion: %w", err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, nil
}

// DeleteExpired removes promotions whose validity ended before the cutoff.
func (s *PromotionStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM promotions WHERE valid_to < ?`, before.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	return res.RowsAffected()
}

// scanPromotion reads one promotions row into a domain record.
func scanPromotion(rows *sql.Rows) (domain.PromotionRecord, error) {
	var r domain.PromotionRecord
	var regular sql.NullFloat64
	var validFrom, validTo string

	if err := rows.Scan(&r.ProductName, &r.StoreName, &regular, &r.SalePrice,
		&validFrom, &validTo, &r.SourceID, &r.Category); err != nil {
		return r, fmt.Errorf("scan promotion: %w", err)
	}

	if regular.Valid {
		r.RegularPrice = regular.Float64
	}

	var err error
	if r.ValidFrom, err = time.Parse(dateLayout, validFrom); err != nil {
		return r, fmt.Errorf("parse valid_from: %w", err)
	}
	if r.ValidTo, err = time.Parse(dateLayout, validTo); err != nil {
		return r, fmt.Errorf("parse valid_to: %w", err)
	}

	return r, nil
}
