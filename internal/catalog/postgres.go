package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a Postgres-backed Catalog. The whole catalog is one table with
// standard indexes; the pipeline only reads it, the sync command writes it.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres using the given DSN.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the markets table and its indexes if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS markets (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			category   TEXT NOT NULL DEFAULT '',
			slug       TEXT NOT NULL DEFAULT '',
			end_date   TIMESTAMPTZ,
			active     BOOLEAN NOT NULL DEFAULT TRUE,
			volume     DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_markets_category ON markets (category) WHERE active;
		CREATE INDEX IF NOT EXISTS idx_markets_active_volume ON markets (active, volume DESC);
		CREATE INDEX IF NOT EXISTS idx_markets_end_date ON markets (end_date);`

	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("catalog: ensure schema: %w", err)
	}
	return nil
}

const marketCols = `id, title, category, slug, end_date, active, volume, created_at, updated_at`

// UpsertBatch inserts or updates markets in a single batch round trip.
func (s *Store) UpsertBatch(ctx context.Context, markets []Market) error {
	if len(markets) == 0 {
		return nil
	}

	const query = `
		INSERT INTO markets (
			id, title, category, slug, end_date, active, volume, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			title      = EXCLUDED.title,
			category   = EXCLUDED.category,
			slug       = EXCLUDED.slug,
			end_date   = EXCLUDED.end_date,
			active     = EXCLUDED.active,
			volume     = EXCLUDED.volume,
			updated_at = NOW()`

	batch := &pgx.Batch{}
	for _, m := range markets {
		var endDate any
		if !m.EndDate.IsZero() {
			endDate = m.EndDate
		}
		batch.Queue(query,
			m.ID, m.Title, m.Category, m.Slug,
			endDate, m.Active, m.Volume, m.CreatedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range markets {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("catalog: upsert batch item %d: %w", i, err)
		}
	}
	return nil
}

// Search implements Catalog. Results are ordered by volume then recency so
// that truncation to the candidate cap keeps the liveliest markets, with ID
// as the deterministic tie-break.
func (s *Store) Search(ctx context.Context, categories []string, limit int) ([]Market, error) {
	query := `SELECT ` + marketCols + ` FROM markets
		WHERE active AND (end_date IS NULL OR end_date > NOW())`
	args := []any{}
	argIdx := 1

	if len(categories) > 0 {
		query += fmt.Sprintf(" AND category = ANY($%d)", argIdx)
		args = append(args, categories)
		argIdx++
	}

	query += " ORDER BY volume DESC, created_at DESC, id"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: search markets: %w", err)
	}
	defer rows.Close()

	var markets []Market
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan market: %w", err)
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: search rows: %w", err)
	}
	return markets, nil
}

// KnownCategories implements Catalog.
func (s *Store) KnownCategories(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT category FROM markets
		 WHERE active AND category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("catalog: known categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("catalog: scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: category rows: %w", err)
	}
	return categories, nil
}

// CountActive returns the number of active markets.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM markets WHERE active`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("catalog: count active: %w", err)
	}
	return count, nil
}

// CategoryCounts returns active market counts per category, largest first.
func (s *Store) CategoryCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM markets
		 WHERE active GROUP BY category ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("catalog: category counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var cat string
		var n int64
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("catalog: scan count: %w", err)
		}
		counts[cat] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: count rows: %w", err)
	}
	return counts, nil
}

// DeactivateExpired flags markets whose end date has passed. Returns the
// number of markets updated.
func (s *Store) DeactivateExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE markets SET active = FALSE, updated_at = NOW()
		 WHERE active AND end_date IS NOT NULL AND end_date <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("catalog: deactivate expired: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func scanMarket(row pgx.Row) (Market, error) {
	var m Market
	var endDate *time.Time
	err := row.Scan(
		&m.ID, &m.Title, &m.Category, &m.Slug,
		&endDate, &m.Active, &m.Volume,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return Market{}, err
	}
	if endDate != nil {
		m.EndDate = *endDate
	}
	return m, nil
}
