package donor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bloodlink/bloodlink/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type donorRepoPG struct{ pool *pgxpool.Pool }

func NewDonorRepoPG(pool *pgxpool.Pool) DonorRepository {
	return &donorRepoPG{pool: pool}
}

func (r *donorRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const donorCols = `id, full_name, email, date_of_birth, password_hash,
	phone_number, blood_group, address, status, registered_at`

func (r *donorRepoPG) scanDonor(row pgx.Row) (*Donor, error) {
	var d Donor
	err := row.Scan(&d.ID, &d.FullName, &d.Email, &d.DateOfBirth, &d.PasswordHash,
		&d.PhoneNumber, &d.BloodGroup, &d.Address, &d.Status, &d.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &d, err
}

func (r *donorRepoPG) Create(ctx context.Context, d *Donor) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO donors (id, full_name, email, date_of_birth, password_hash,
			phone_number, blood_group, address, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		d.ID, d.FullName, d.Email, d.DateOfBirth, d.PasswordHash,
		d.PhoneNumber, d.BloodGroup, d.Address, d.Status)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *donorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Donor, error) {
	return r.scanDonor(r.conn(ctx).QueryRow(ctx, `SELECT `+donorCols+` FROM donors WHERE id = $1`, id))
}

func (r *donorRepoPG) GetByEmail(ctx context.Context, email string) (*Donor, error) {
	return r.scanDonor(r.conn(ctx).QueryRow(ctx, `SELECT `+donorCols+` FROM donors WHERE lower(email) = lower($1)`, email))
}

func (r *donorRepoPG) Update(ctx context.Context, d *Donor) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE donors SET full_name=$2, date_of_birth=$3, phone_number=$4,
			blood_group=$5, address=$6, status=$7
		WHERE id = $1`,
		d.ID, d.FullName, d.DateOfBirth, d.PhoneNumber,
		d.BloodGroup, d.Address, d.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *donorRepoPG) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE donors SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *donorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM donors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *donorRepoPG) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM donors WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *donorRepoPG) Search(ctx context.Context, bloodGroup, address string, exclude *uuid.UUID, limit, offset int) ([]*Donor, int, error) {
	where := `status = 'active'`
	args := []interface{}{}
	n := 0

	if bloodGroup != "" {
		n++
		where += fmt.Sprintf(` AND blood_group = $%d`, n)
		args = append(args, bloodGroup)
	}
	if address != "" {
		n++
		where += fmt.Sprintf(` AND address ILIKE $%d`, n)
		args = append(args, "%"+address+"%")
	}
	if exclude != nil {
		n++
		where += fmt.Sprintf(` AND id <> $%d`, n)
		args = append(args, *exclude)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM donors WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT `+donorCols+` FROM donors WHERE `+where+` ORDER BY full_name LIMIT $%d OFFSET $%d`, n+1, n+2),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *donorRepoPG) AdminList(ctx context.Context, f AdminFilter, limit, offset int) ([]*Donor, int, error) {
	where, args := adminFilterSQL(f)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM donors WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	dataArgs := append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT `+donorCols+` FROM donors WHERE `+where+` ORDER BY registered_at DESC LIMIT $%d OFFSET $%d`, n+1, n+2),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *donorRepoPG) ListForExport(ctx context.Context, f AdminFilter) ([]*Donor, error) {
	where, args := adminFilterSQL(f)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+donorCols+` FROM donors WHERE `+where+` ORDER BY registered_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items, _, err := r.collect(rows, 0)
	return items, err
}

func (r *donorRepoPG) CountAll(ctx context.Context) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM donors`).Scan(&total)
	return total, err
}

func (r *donorRepoPG) ListRecent(ctx context.Context, limit int) ([]*Donor, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+donorCols+` FROM donors ORDER BY registered_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items, _, err := r.collect(rows, 0)
	return items, err
}

func (r *donorRepoPG) collect(rows pgx.Rows, total int) ([]*Donor, int, error) {
	var items []*Donor
	for rows.Next() {
		d, err := r.scanDonor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func adminFilterSQL(f AdminFilter) (string, []interface{}) {
	where := `TRUE`
	args := []interface{}{}
	n := 0

	if f.Search != "" {
		n++
		where += fmt.Sprintf(` AND (full_name ILIKE $%d OR email ILIKE $%d OR phone_number ILIKE $%d)`, n, n, n)
		args = append(args, "%"+f.Search+"%")
	}
	if f.BloodGroup != "" {
		n++
		where += fmt.Sprintf(` AND blood_group = $%d`, n)
		args = append(args, f.BloodGroup)
	}
	if f.Status != "" {
		n++
		where += fmt.Sprintf(` AND status = $%d`, n)
		args = append(args, f.Status)
	}
	return where, args
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
