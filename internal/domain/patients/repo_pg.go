package patients

import (
	"context"
	"fmt"

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

const patientCols = `id, identification_type, identification_number, name, birth_date, gender,
	email, phone, address, hometown, economic_level, education_level, marital_status,
	caregiver_name, caregiver_identification_number, caregiver_age,
	caregiver_education_level, caregiver_economic_level, caregiver_residence_zone,
	caregiver_kinship, created_at, updated_at`

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var c Caregiver
	err := row.Scan(&p.ID, &p.IdentificationType, &p.IdentificationNumber, &p.Name, &p.BirthDate, &p.Gender,
		&p.Email, &p.Phone, &p.Address, &p.Hometown, &p.EconomicLevel, &p.EducationLevel, &p.MaritalStatus,
		&c.Name, &c.IdentificationNumber, &c.Age,
		&c.EducationLevel, &c.EconomicLevel, &c.ResidenceZone,
		&c.Kinship, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if c.Name != "" {
		p.Caregiver = &c
	}
	return &p, nil
}

func caregiverFields(p *Patient) (string, int64, int, string, string, string, string) {
	if p.Caregiver == nil {
		return "", 0, 0, "", "", "", ""
	}
	c := p.Caregiver
	return c.Name, c.IdentificationNumber, c.Age, c.EducationLevel, c.EconomicLevel, c.ResidenceZone, c.Kinship
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	cn, cid, cage, cedu, ceco, czone, ckin := caregiverFields(p)
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, identification_type, identification_number, name, birth_date, gender,
			email, phone, address, hometown, economic_level, education_level, marital_status,
			caregiver_name, caregiver_identification_number, caregiver_age,
			caregiver_education_level, caregiver_economic_level, caregiver_residence_zone, caregiver_kinship)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		p.ID, p.IdentificationType, p.IdentificationNumber, p.Name, p.BirthDate, p.Gender,
		p.Email, p.Phone, p.Address, p.Hometown, p.EconomicLevel, p.EducationLevel, p.MaritalStatus,
		cn, cid, cage, cedu, ceco, czone, ckin)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByIdentification(ctx context.Context, identificationNumber int64) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE identification_number = $1`, identificationNumber))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	cn, cid, cage, cedu, ceco, czone, ckin := caregiverFields(p)
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET name=$2, birth_date=$3, gender=$4, email=$5, phone=$6, address=$7,
			hometown=$8, economic_level=$9, education_level=$10, marital_status=$11,
			caregiver_name=$12, caregiver_identification_number=$13, caregiver_age=$14,
			caregiver_education_level=$15, caregiver_economic_level=$16,
			caregiver_residence_zone=$17, caregiver_kinship=$18, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.BirthDate, p.Gender, p.Email, p.Phone, p.Address,
		p.Hometown, p.EconomicLevel, p.EducationLevel, p.MaritalStatus,
		cn, cid, cage, cedu, ceco, czone, ckin)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	query := `SELECT ` + patientCols + ` FROM patient WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM patient WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND name ILIKE '%%' || $%d || '%%'`, idx)
		countQuery += fmt.Sprintf(` AND name ILIKE '%%' || $%d || '%%'`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["identification_number"]; ok {
		query += fmt.Sprintf(` AND identification_number::text LIKE $%d || '%%'`, idx)
		countQuery += fmt.Sprintf(` AND identification_number::text LIKE $%d || '%%'`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["gender"]; ok {
		query += fmt.Sprintf(` AND gender = $%d`, idx)
		countQuery += fmt.Sprintf(` AND gender = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}
