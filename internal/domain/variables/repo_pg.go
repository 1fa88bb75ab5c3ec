package variables

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

const variableCols = `id, layer_id, name, description, type, options, required, created_at, updated_at`

func (r *repoPG) scanVariable(row pgx.Row) (*Variable, error) {
	var v Variable
	err := row.Scan(&v.ID, &v.LayerID, &v.Name, &v.Description, &v.Type, &v.Options, &v.Required,
		&v.CreatedAt, &v.UpdatedAt)
	return &v, err
}

func (r *repoPG) Create(ctx context.Context, v *Variable) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO research_variable (id, layer_id, name, description, type, options, required)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		v.ID, v.LayerID, v.Name, v.Description, v.Type, v.Options, v.Required)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Variable, error) {
	return r.scanVariable(r.conn(ctx).QueryRow(ctx,
		`SELECT `+variableCols+` FROM research_variable WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, v *Variable) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE research_variable SET name=$2, description=$3, type=$4, options=$5, required=$6, updated_at=NOW()
		WHERE id = $1`,
		v.ID, v.Name, v.Description, v.Type, v.Options, v.Required)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM research_variable WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Variable, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM research_variable`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+variableCols+` FROM research_variable ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Variable
	for rows.Next() {
		v, err := r.scanVariable(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, nil
}

func (r *repoPG) ListByLayer(ctx context.Context, layerID uuid.UUID, limit, offset int) ([]*Variable, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM research_variable WHERE layer_id = $1`, layerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+variableCols+` FROM research_variable WHERE layer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		layerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Variable
	for rows.Next() {
		v, err := r.scanVariable(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, nil
}
