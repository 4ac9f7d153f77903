package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/EgorLis/secure-files/internal/domain"
)

const userColumns = "id, email, username, pass_hash, full_name, phone, role, is_active, mfa_enabled, created_at, last_login"

func (r *PGRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	q := r.qb().Insert(r.table("users")).
		Columns("email", "username", "pass_hash", "full_name", "phone", "role").
		Values(u.Email, u.Username, u.PassHash, u.FullName, u.Phone, u.Role).
		Suffix("RETURNING " + userColumns)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateUser", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	out, err := scanUser(row)
	if err != nil {
		r.logger.Printf("CreateUser scan error after %s: %v", time.Since(start), err)
		// уникальные конфликты по email/username маппим в доменные ошибки
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case "users_email_key":
				return domain.User{}, domain.ErrEmailTaken
			case "users_username_key":
				return domain.User{}, domain.ErrUsernameTaken
			}
			return domain.User{}, domain.ErrConflict
		}
		return domain.User{}, err
	}
	r.logger.Printf("CreateUser ok in %s id=%s email=%s", time.Since(start), out.ID, out.Email)
	return out, nil
}

func (r *PGRepo) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	q := r.qb().Select(userColumns).
		From(r.table("users")).
		Where(sq.Eq{"email": email})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UserByEmail", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	u, err := scanUser(row)
	if err != nil {
		r.logger.Printf("UserByEmail scan error after %s: %v", time.Since(start), err)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	r.logger.Printf("UserByEmail ok in %s id=%s", time.Since(start), u.ID)
	return u, nil
}

func (r *PGRepo) UserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	q := r.qb().Select(userColumns).
		From(r.table("users")).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UserByID", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	u, err := scanUser(row)
	if err != nil {
		r.logger.Printf("UserByID scan error after %s: %v", time.Since(start), err)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	r.logger.Printf("UserByID ok in %s id=%s", time.Since(start), u.ID)
	return u, nil
}

func (r *PGRepo) TouchLastLogin(ctx context.Context, id domain.UserID) error {
	q := r.qb().Update(r.table("users")).
		Set("last_login", sq.Expr("now()")).
		Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("TouchLastLogin", sqlStr, args)

	start := time.Now()
	_, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("TouchLastLogin exec error after %s: %v", time.Since(start), err)
		return err
	}
	r.logger.Printf("TouchLastLogin ok in %s id=%s", time.Since(start), id)
	return nil
}

func (r *PGRepo) SetMFAEnabled(ctx context.Context, id domain.UserID, enabled bool) error {
	q := r.qb().Update(r.table("users")).
		Set("mfa_enabled", enabled).
		Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("SetMFAEnabled", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("SetMFAEnabled exec error after %s: %v", time.Since(start), err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("SetMFAEnabled ok in %s id=%s enabled=%v", time.Since(start), id, enabled)
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.PassHash, &u.FullName, &u.Phone,
		&u.Role, &u.IsActive, &u.MFAEnabled, &u.CreatedAt, &u.LastLogin,
	)
	return u, err
}
