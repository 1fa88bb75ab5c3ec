package dashboards

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

const dashboardCols = `id, name, description, embed_id, layer_id, created_at, updated_at`

func (r *repoPG) scanDashboard(row pgx.Row) (*Dashboard, error) {
	var d Dashboard
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.EmbedID, &d.LayerID, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Dashboard) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO dashboard (id, name, description, embed_id, layer_id)
		VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.Name, d.Description, d.EmbedID, d.LayerID)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Dashboard, error) {
	return r.scanDashboard(r.conn(ctx).QueryRow(ctx, `SELECT `+dashboardCols+` FROM dashboard WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, d *Dashboard) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE dashboard SET name=$2, description=$3, embed_id=$4, layer_id=$5, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Description, d.EmbedID, d.LayerID)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM dashboard WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Dashboard, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM dashboard`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+dashboardCols+` FROM dashboard ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Dashboard
	for rows.Next() {
		d, err := r.scanDashboard(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}
