package layers

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinres/console/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const layerCols = `id, name, description, boss_name, boss_email, created_at, updated_at`

func (r *repoPG) scanLayer(row pgx.Row) (*Layer, error) {
	var l Layer
	err := row.Scan(&l.ID, &l.Name, &l.Description, &l.BossName, &l.BossEmail, &l.CreatedAt, &l.UpdatedAt)
	return &l, err
}

func (r *repoPG) Create(ctx context.Context, l *Layer) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO research_layer (id, name, description, boss_name, boss_email)
		VALUES ($1,$2,$3,$4,$5)`,
		l.ID, l.Name, l.Description, l.BossName, l.BossEmail)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Layer, error) {
	return r.scanLayer(r.conn(ctx).QueryRow(ctx, `SELECT `+layerCols+` FROM research_layer WHERE id = $1`, id))
}

func (r *repoPG) GetByName(ctx context.Context, name string) (*Layer, error) {
	return r.scanLayer(r.conn(ctx).QueryRow(ctx, `SELECT `+layerCols+` FROM research_layer WHERE name = $1`, name))
}

func (r *repoPG) Update(ctx context.Context, l *Layer) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE research_layer SET name=$2, description=$3, boss_name=$4, boss_email=$5, updated_at=NOW()
		WHERE id = $1`,
		l.ID, l.Name, l.Description, l.BossName, l.BossEmail)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM research_layer WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Layer, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM research_layer`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+layerCols+` FROM research_layer ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Layer
	for rows.Next() {
		l, err := r.scanLayer(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, nil
}
