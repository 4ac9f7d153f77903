package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/EgorLis/secure-files/internal/domain"
)

const deviceColumns = "id, user_id, name, secret, confirmed, created_at"

func (r *PGRepo) CreateDevice(ctx context.Context, d domain.TOTPDevice) (domain.TOTPDevice, error) {
	q := r.qb().Insert(r.table("totp_devices")).
		Columns("user_id", "name", "secret").
		Values(d.UserID, d.Name, d.Secret).
		Suffix("RETURNING " + deviceColumns)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateDevice", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	out, err := scanDevice(row)
	if err != nil {
		r.logger.Printf("CreateDevice scan error after %s: %v", time.Since(start), err)
		return domain.TOTPDevice{}, err
	}
	r.logger.Printf("CreateDevice ok in %s id=%s user=%s", time.Since(start), out.ID, out.UserID)
	return out, nil
}

// LatestUnconfirmed — самое свежее неподтверждённое устройство пользователя.
func (r *PGRepo) LatestUnconfirmed(ctx context.Context, userID domain.UserID) (domain.TOTPDevice, error) {
	q := r.qb().Select(deviceColumns).
		From(r.table("totp_devices")).
		Where(sq.Eq{"user_id": userID, "confirmed": false}).
		OrderBy("created_at DESC").
		Limit(1)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("LatestUnconfirmed", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TOTPDevice{}, domain.ErrNoPendingSetup
		}
		r.logger.Printf("LatestUnconfirmed scan error after %s: %v", time.Since(start), err)
		return domain.TOTPDevice{}, err
	}
	r.logger.Printf("LatestUnconfirmed ok in %s id=%s", time.Since(start), d.ID)
	return d, nil
}

func (r *PGRepo) ConfirmDevice(ctx context.Context, id domain.DeviceID) error {
	q := r.qb().Update(r.table("totp_devices")).
		Set("confirmed", true).
		Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("ConfirmDevice", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("ConfirmDevice exec error after %s: %v", time.Since(start), err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("ConfirmDevice ok in %s id=%s", time.Since(start), id)
	return nil
}

// DeleteUnconfirmed чистит неподтверждённые устройства пользователя.
// exceptID == uuid.Nil — удалить все.
func (r *PGRepo) DeleteUnconfirmed(ctx context.Context, userID domain.UserID, exceptID domain.DeviceID) error {
	cond := sq.And{
		sq.Eq{"user_id": userID},
		sq.Eq{"confirmed": false},
	}
	if exceptID != uuid.Nil {
		cond = append(cond, sq.NotEq{"id": exceptID})
	}
	q := r.qb().Delete(r.table("totp_devices")).Where(cond)
	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeleteUnconfirmed", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("DeleteUnconfirmed exec error after %s: %v", time.Since(start), err)
		return err
	}
	r.logger.Printf("DeleteUnconfirmed ok in %s user=%s removed=%d", time.Since(start), userID, tag.RowsAffected())
	return nil
}

func (r *PGRepo) DeleteAll(ctx context.Context, userID domain.UserID) error {
	q := r.qb().Delete(r.table("totp_devices")).
		Where(sq.Eq{"user_id": userID})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeleteAll", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("DeleteAll exec error after %s: %v", time.Since(start), err)
		return err
	}
	r.logger.Printf("DeleteAll ok in %s user=%s removed=%d", time.Since(start), userID, tag.RowsAffected())
	return nil
}

func (r *PGRepo) ConfirmedDevices(ctx context.Context, userID domain.UserID) ([]domain.TOTPDevice, error) {
	q := r.qb().Select(deviceColumns).
		From(r.table("totp_devices")).
		Where(sq.Eq{"user_id": userID, "confirmed": true}).
		OrderBy("created_at ASC")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("ConfirmedDevices", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("ConfirmedDevices query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.TOTPDevice
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			r.logger.Printf("ConfirmedDevices scan error: %v", err)
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("ConfirmedDevices rows error: %v", err)
		return nil, err
	}
	r.logger.Printf("ConfirmedDevices ok in %s user=%s count=%d", time.Since(start), userID, len(out))
	return out, nil
}

func scanDevice(row pgx.Row) (domain.TOTPDevice, error) {
	var d domain.TOTPDevice
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Secret, &d.Confirmed, &d.CreatedAt)
	return d, err
}
