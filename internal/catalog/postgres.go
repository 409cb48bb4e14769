package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/logger"
	"github.com/moonback/Esil-events-v1-sub001/internal/models"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore reads the storefront's products table.
type PostgresStore struct {
	db  querier
	log *zap.Logger
}

// NewPostgresStore connects a pool and verifies it.
func NewPostgresStore(ctx context.Context, dsn string, log *zap.Logger) (*PostgresStore, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create catalog pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to connect to catalog database: %w", err)
	}
	return NewPostgresStoreWithDB(pool, log), pool, nil
}

// NewPostgresStoreWithDB wraps an existing pool (or a mock).
func NewPostgresStoreWithDB(db querier, log *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, log: logger.OrNop(log).Named("catalog.postgres")}
}

const selectProducts = "SELECT id::text, name, category, COALESCE(subcategory, ''), COALESCE(description, ''), " +
	"price::float8, COALESCE(technical_specs::text, '{}'), COALESCE(colors, '{}'::text[]), " +
	"COALESCE(stock, 0), COALESCE(capacity_min, 0), COALESCE(capacity_max, 0), is_available " +
	"FROM products"

// buildQuery renders the filter as a parameterised statement.
func buildQuery(f Filter) (string, []any) {
	clauses := []string{"is_available = true"}
	args := make([]any, 0, 5)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Categories) > 0 {
		clauses = append(clauses, "category = ANY("+next(f.Categories)+")")
	}
	if len(f.Subcategories) > 0 {
		clauses = append(clauses, "subcategory = ANY("+next(f.Subcategories)+")")
	}
	if f.Price != nil {
		lo := next(f.Price.Min)
		hi := next(f.Price.Max)
		clauses = append(clauses, fmt.Sprintf("price BETWEEN %s AND %s", lo, hi))
	}
	if f.CapacityFloor > 0 {
		p := next(f.CapacityFloor)
		clauses = append(clauses,
			fmt.Sprintf("COALESCE(capacity_min, 0) <= %s", p),
			fmt.Sprintf("(COALESCE(capacity_max, 0) = 0 OR capacity_max >= %s)", p),
		)
	}

	return selectProducts + " WHERE " + strings.Join(clauses, " AND ") + " ORDER BY name", args
}

func (s *PostgresStore) Query(ctx context.Context, filter Filter) ([]models.CatalogProduct, error) {
	sql, args := buildQuery(filter)
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]models.CatalogProduct, 0)
	for rows.Next() {
		var (
			p                     models.CatalogProduct
			specs                 string
			stock, capMin, capMax int32
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Category, &p.Subcategory, &p.Description,
			&p.Price, &specs, &p.Colors,
			&stock, &capMin, &capMax, &p.Available,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Stock = int(stock)
		p.MinCapacity = int(capMin)
		p.MaxCapacity = int(capMax)
		if specs != "" && specs != "{}" {
			if err := json.Unmarshal([]byte(specs), &p.TechnicalSpecs); err != nil {
				s.log.Warn("ignoring unreadable technical specs",
					zap.String("product_id", p.ID),
					zap.Error(err),
				)
				p.TechnicalSpecs = nil
			}
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}
