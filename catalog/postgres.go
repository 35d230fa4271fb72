package catalog

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	ucp "github.com/ucp-foundation/ucp/go"
)

// Postgres is a product catalog backed by a products table. Prices are
// stored as integer cents (price_cents); no floating-point column exists.
//
// Expected schema:
//
//	CREATE TABLE products (
//	    id          TEXT PRIMARY KEY,
//	    title       TEXT NOT NULL,
//	    price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
//	    image_url   TEXT NOT NULL DEFAULT '',
//	    description TEXT NOT NULL DEFAULT ''
//	);
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a catalog over an open database handle. The caller
// owns the handle's lifecycle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// escapeLike neutralizes LIKE/ILIKE metacharacters so user query text
// matches literally instead of acting as a wildcard pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Find implements ucp.Catalog. Matching uses ILIKE over title and
// description, mirroring the in-memory semantics; ordering is left to the
// responder. LIKE metacharacters in the query are escaped so it matches as
// a literal substring, exactly as Memory treats it.
func (p *Postgres) Find(ctx context.Context, query string) ([]ucp.Product, error) {
	const q = `
		SELECT id, title, price_cents, image_url, description
		FROM products
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')`

	term := escapeLike(strings.TrimSpace(query))
	rows, err := p.db.QueryContext(ctx, q, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ucp.Product
	for rows.Next() {
		var prod ucp.Product
		if err := rows.Scan(&prod.ID, &prod.Title, &prod.Price, &prod.ImageURL, &prod.Description); err != nil {
			return nil, err
		}
		products = append(products, prod)
	}
	return products, rows.Err()
}

// GetProduct implements ucp.ProductGetter.
func (p *Postgres) GetProduct(ctx context.Context, id string) (ucp.Product, bool, error) {
	prod, err := p.Get(ctx, id)
	if err == sql.ErrNoRows {
		return ucp.Product{}, false, nil
	}
	if err != nil {
		return ucp.Product{}, false, err
	}
	return prod, true, nil
}

// Get returns the product with the given id, or sql.ErrNoRows.
func (p *Postgres) Get(ctx context.Context, id string) (ucp.Product, error) {
	const q = `SELECT id, title, price_cents, image_url, description FROM products WHERE id = $1`

	var prod ucp.Product
	err := p.db.QueryRowContext(ctx, q, id).Scan(&prod.ID, &prod.Title, &prod.Price, &prod.ImageURL, &prod.Description)
	return prod, err
}

// Put inserts or replaces a product, generating an id if absent.
func (p *Postgres) Put(ctx context.Context, prod ucp.Product) (ucp.Product, error) {
	if prod.ID == "" {
		prod.ID = uuid.NewString()
	}

	const q = `
		INSERT INTO products (id, title, price_cents, image_url, description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    price_cents = EXCLUDED.price_cents,
		    image_url = EXCLUDED.image_url,
		    description = EXCLUDED.description`

	_, err := p.db.ExecContext(ctx, q, prod.ID, prod.Title, prod.Price, prod.ImageURL, prod.Description)
	return prod, err
}

// Delete removes a product. Deleting an unknown id returns sql.ErrNoRows.
func (p *Postgres) Delete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
