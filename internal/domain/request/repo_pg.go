package request

import (
	"context"
	"errors"
	"fmt"
	"time"

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

type requestRepoPG struct{ pool *pgxpool.Pool }

func NewRequestRepoPG(pool *pgxpool.Pool) RequestRepository {
	return &requestRepoPG{pool: pool}
}

func (r *requestRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const requestCols = `id, donor_id, requester_id, requester_name, requester_contact,
	message, status, expiry_date, request_date`

func (r *requestRepoPG) scanRequest(row pgx.Row) (*DonationRequest, error) {
	var dr DonationRequest
	err := row.Scan(&dr.ID, &dr.DonorID, &dr.RequesterID, &dr.RequesterName, &dr.RequesterContact,
		&dr.Message, &dr.Status, &dr.ExpiryDate, &dr.RequestDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &dr, err
}

func (r *requestRepoPG) Create(ctx context.Context, dr *DonationRequest) error {
	dr.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO donor_requests (id, donor_id, requester_id, requester_name,
			requester_contact, message, status, expiry_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING request_date`,
		dr.ID, dr.DonorID, dr.RequesterID, dr.RequesterName,
		dr.RequesterContact, dr.Message, dr.Status, dr.ExpiryDate).Scan(&dr.RequestDate)
}

func (r *requestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DonationRequest, error) {
	return r.scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM donor_requests WHERE id = $1`, id))
}

func (r *requestRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string, expiryDate *time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE donor_requests SET status = $2, expiry_date = $3 WHERE id = $1`,
		id, status, expiryDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *requestRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM donor_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *requestRepoPG) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM donor_requests WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *requestRepoPG) ListByDonor(ctx context.Context, donorID uuid.UUID, limit, offset int) ([]*DonationRequest, int, error) {
	return r.listBy(ctx, `donor_id`, donorID, limit, offset)
}

func (r *requestRepoPG) ListByRequester(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]*DonationRequest, int, error) {
	return r.listBy(ctx, `requester_id`, requesterID, limit, offset)
}

func (r *requestRepoPG) listBy(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]*DonationRequest, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM donor_requests WHERE `+column+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+requestCols+` FROM donor_requests WHERE `+column+` = $1 ORDER BY request_date DESC LIMIT $2 OFFSET $3`,
		id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *requestRepoPG) AdminList(ctx context.Context, f Filter, limit, offset int) ([]*DonationRequest, int, error) {
	where, args := filterSQL(f)

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM donor_requests WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	dataArgs := append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT `+requestCols+` FROM donor_requests WHERE `+where+` ORDER BY request_date DESC LIMIT $%d OFFSET $%d`, n+1, n+2),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *requestRepoPG) ListForExport(ctx context.Context, f Filter) ([]*DonationRequest, error) {
	where, args := filterSQL(f)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+requestCols+` FROM donor_requests WHERE `+where+` ORDER BY request_date DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items, _, err := r.collect(rows, 0)
	return items, err
}

func (r *requestRepoPG) CountAll(ctx context.Context) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM donor_requests`).Scan(&total)
	return total, err
}

func (r *requestRepoPG) CountByStatus(ctx context.Context, status string) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM donor_requests WHERE status = $1`, status).Scan(&total)
	return total, err
}

func (r *requestRepoPG) ListRecent(ctx context.Context, limit int) ([]*DonationRequest, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+requestCols+` FROM donor_requests ORDER BY request_date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items, _, err := r.collect(rows, 0)
	return items, err
}

func (r *requestRepoPG) collect(rows pgx.Rows, total int) ([]*DonationRequest, int, error) {
	var items []*DonationRequest
	for rows.Next() {
		dr, err := r.scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, dr)
	}
	return items, total, rows.Err()
}

// filterSQL builds the WHERE clause for admin listing and export. The
// Expired and Accepted status filters are expressed in SQL so the derived
// view matches EffectiveStatus row for row.
func filterSQL(f Filter) (string, []interface{}) {
	where := `TRUE`
	args := []interface{}{}
	n := 0

	switch f.Status {
	case "":
	case StatusExpired:
		where += ` AND status = 'Accepted' AND expiry_date < CURRENT_DATE`
	case StatusAccepted:
		where += ` AND status = 'Accepted' AND expiry_date >= CURRENT_DATE`
	default:
		n++
		where += fmt.Sprintf(` AND status = $%d`, n)
		args = append(args, f.Status)
	}
	if f.Search != "" {
		n++
		where += fmt.Sprintf(` AND (requester_name ILIKE $%d OR message ILIKE $%d)`, n, n)
		args = append(args, "%"+f.Search+"%")
	}
	if f.DateStart != nil {
		n++
		where += fmt.Sprintf(` AND request_date::date >= $%d`, n)
		args = append(args, *f.DateStart)
	}
	if f.DateEnd != nil {
		n++
		where += fmt.Sprintf(` AND request_date::date <= $%d`, n)
		args = append(args, *f.DateEnd)
	}
	return where, args
}
