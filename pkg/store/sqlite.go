package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dbpediafacts/pkg/db"
	"dbpediafacts/pkg/dbpedia"
)

// Store defines the repository interface.
type Store interface {
	FactStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(d *db.DB) *SQLiteStore {
	return &SQLiteStore{db: d}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Facts ---

func (s *SQLiteStore) SaveFacts(ctx context.Context, res dbpedia.Resource, facts dbpedia.Facts) error {
	query := `INSERT INTO facts (resource_url, kind, namespace, resource, population, area, flag, blazon)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(resource_url) DO UPDATE SET
			kind = excluded.kind,
			namespace = excluded.namespace,
			resource = excluded.resource,
			population = COALESCE(excluded.population, facts.population),
			area = COALESCE(excluded.area, facts.area),
			flag = COALESCE(excluded.flag, facts.flag),
			blazon = COALESCE(excluded.blazon, facts.blazon),
			updated_at = CURRENT_TIMESTAMP`

	_, err := s.db.ExecContext(ctx, query,
		res.URL, int(res.Kind), res.Namespace, res.Name,
		nullable(facts, dbpedia.KeyPopulation),
		nullable(facts, dbpedia.KeyArea),
		nullable(facts, dbpedia.KeyFlag),
		nullable(facts, dbpedia.KeyBlazon),
	)
	if err != nil {
		return fmt.Errorf("failed to save facts for %s: %w", res.URL, err)
	}
	return nil
}

func (s *SQLiteStore) GetFacts(ctx context.Context, resourceURL string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectFacts+` WHERE resource_url = ?`, resourceURL)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (s *SQLiteStore) ListFacts(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, selectFacts+` ORDER BY resource_url`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

const selectFacts = `SELECT resource_url, kind, namespace, resource, population, area, flag, blazon, created_at, updated_at FROM facts`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		rec                            Record
		url                            string
		kind                           int
		namespace, name                sql.NullString
		population, area, flag, blazon sql.NullString
	)
	err := sc.Scan(&url, &kind, &namespace, &name,
		&population, &area, &flag, &blazon,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rec.Resource = dbpedia.NewResource(dbpedia.Kind(kind), namespace.String, name.String)
	if rec.Resource.URL != url {
		return nil, fmt.Errorf("stored resource %q does not match its url %q", rec.Resource.URL, url)
	}

	rec.Facts = make(dbpedia.Facts)
	for key, v := range map[string]sql.NullString{
		dbpedia.KeyPopulation: population,
		dbpedia.KeyArea:       area,
		dbpedia.KeyFlag:       flag,
		dbpedia.KeyBlazon:     blazon,
	} {
		if v.Valid {
			rec.Facts[key] = v.String
		}
	}
	return &rec, nil
}

func nullable(facts dbpedia.Facts, key string) sql.NullString {
	v, ok := facts[key]
	return sql.NullString{String: v, Valid: ok}
}
