package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/EgorLis/secure-files/internal/domain"
)

const shareColumns = "id, file_id, shared_with, shared_by, created_at, expires_at, access_count"

func (r *PGRepo) CreateShare(ctx context.Context, s domain.FileShare) (domain.FileShare, error) {
	q := r.qb().Insert(r.table("file_shares")).
		Columns("file_id", "shared_with", "shared_by", "expires_at").
		Values(s.FileID, s.SharedWith, s.SharedBy, s.ExpiresAt).
		Suffix("RETURNING " + shareColumns)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateShare", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	out, err := scanShare(row)
	if err != nil {
		r.logger.Printf("CreateShare scan error after %s: %v", time.Since(start), err)
		// повторный грант на пару (file, shared_with) — даже истёкший
		if _, ok := uniqueViolation(err); ok {
			return domain.FileShare{}, domain.ErrAlreadyShared
		}
		return domain.FileShare{}, err
	}
	r.logger.Printf("CreateShare ok in %s file_id=%s shared_with=%s", time.Since(start), out.FileID, out.SharedWith)
	return out, nil
}

// ShareFor возвращает грант пары (включая истёкший) или nil, если гранта нет.
// Решение «считать ли истёкший действующим» — за гейтом доступа.
func (r *PGRepo) ShareFor(ctx context.Context, fileID domain.FileID, userID domain.UserID) (*domain.FileShare, error) {
	q := r.qb().Select(shareColumns).
		From(r.table("file_shares")).
		Where(sq.Eq{"file_id": fileID, "shared_with": userID})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("ShareFor", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	s, err := scanShare(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("ShareFor no grant in %s file_id=%s user=%s", time.Since(start), fileID, userID)
			return nil, nil
		}
		r.logger.Printf("ShareFor scan error after %s: %v", time.Since(start), err)
		return nil, err
	}
	r.logger.Printf("ShareFor ok in %s file_id=%s user=%s", time.Since(start), fileID, userID)
	return &s, nil
}

func (r *PGRepo) DeleteShare(ctx context.Context, fileID domain.FileID, userID domain.UserID) error {
	q := r.qb().Delete(r.table("file_shares")).
		Where(sq.Eq{"file_id": fileID, "shared_with": userID})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeleteShare", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("DeleteShare exec error after %s: %v", time.Since(start), err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("DeleteShare ok in %s file_id=%s user=%s", time.Since(start), fileID, userID)
	return nil
}

// IncrementAccess — атомарный инкремент на стороне БД: параллельные
// скачивания одним грантополучателем не теряют обновлений.
func (r *PGRepo) IncrementAccess(ctx context.Context, fileID domain.FileID, userID domain.UserID) error {
	q := r.qb().Update(r.table("file_shares")).
		Set("access_count", sq.Expr("access_count + 1")).
		Where(sq.Eq{"file_id": fileID, "shared_with": userID})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("IncrementAccess", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("IncrementAccess exec error after %s: %v", time.Since(start), err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("IncrementAccess ok in %s file_id=%s user=%s", time.Since(start), fileID, userID)
	return nil
}

func scanShare(row pgx.Row) (domain.FileShare, error) {
	var s domain.FileShare
	err := row.Scan(
		&s.ID, &s.FileID, &s.SharedWith, &s.SharedBy,
		&s.CreatedAt, &s.ExpiresAt, &s.AccessCount,
	)
	return s, err
}
