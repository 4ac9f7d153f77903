package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/EgorLis/secure-files/internal/domain"
)

const fileColumns = "id, owner_id, name, size_bytes, encryption_salt, encryption_nonce, file_hash, storage_key, created_at, updated_at"

func (r *PGRepo) CreateFile(ctx context.Context, f domain.EncryptedFile) (domain.EncryptedFile, error) {
	// salt/nonce/hash пишутся ровно один раз — UPDATE для них не существует
	q := r.qb().Insert(r.table("encrypted_files")).
		Columns("owner_id", "name", "size_bytes", "encryption_salt", "encryption_nonce", "file_hash", "storage_key").
		Values(f.OwnerID, f.Name, f.SizeBytes, f.Salt, f.Nonce, f.FileHash, f.StorageKey).
		Suffix("RETURNING " + fileColumns)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateFile", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	out, err := scanFile(row)
	if err != nil {
		r.logger.Printf("CreateFile scan error after %s: %v", time.Since(start), err)
		return domain.EncryptedFile{}, err
	}
	r.logger.Printf("CreateFile ok in %s id=%s name=%q size=%d", time.Since(start), out.ID, out.Name, out.SizeBytes)
	return out, nil
}

func (r *PGRepo) FileByID(ctx context.Context, id domain.FileID) (domain.EncryptedFile, error) {
	q := r.qb().Select(fileColumns).
		From(r.table("encrypted_files")).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("FileByID", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	f, err := scanFile(row)
	if err != nil {
		r.logger.Printf("FileByID scan error after %s: %v", time.Since(start), err)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.EncryptedFile{}, domain.ErrNotFound
		}
		return domain.EncryptedFile{}, err
	}
	r.logger.Printf("FileByID ok in %s id=%s", time.Since(start), f.ID)
	return f, nil
}

// ListVisible: свои + расшаренные (неистёкшие), без дублей, created_at DESC.
// Истечение гранта — фильтр на чтении, записи не трогаем.
func (r *PGRepo) ListVisible(ctx context.Context, requester domain.UserID) ([]domain.EncryptedFile, error) {
	files := r.table("encrypted_files") + " f"
	shares := r.table("file_shares") + " s"

	visible := sq.Or{
		sq.Eq{"f.owner_id": requester},
		sq.Expr("EXISTS (SELECT 1 FROM "+shares+
			" WHERE s.file_id = f.id AND s.shared_with = ?"+
			" AND (s.expires_at IS NULL OR s.expires_at > now()))", requester),
	}

	sb := r.qb().Select(
		"f.id", "f.owner_id", "f.name", "f.size_bytes",
		"f.encryption_salt", "f.encryption_nonce", "f.file_hash", "f.storage_key",
		"f.created_at", "f.updated_at",
	).From(files).
		Where(visible).
		OrderBy("f.created_at DESC", "f.id DESC")

	sqlStr, args, _ := sb.ToSql()
	r.logSQL("ListVisible", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("ListVisible query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var res []domain.EncryptedFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			r.logger.Printf("ListVisible scan error: %v", err)
			return nil, err
		}
		res = append(res, f)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("ListVisible rows error: %v", err)
		return nil, err
	}
	r.logger.Printf("ListVisible ok in %s count=%d", time.Since(start), len(res))
	return res, nil
}

func (r *PGRepo) DeleteFile(ctx context.Context, id domain.FileID, owner domain.UserID) error {
	// гранты удаляются каскадом (FK ON DELETE CASCADE)
	q := r.qb().Delete(r.table("encrypted_files")).
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{"owner_id": owner}})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeleteFile", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("DeleteFile exec error after %s: %v", time.Since(start), err)
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Printf("DeleteFile no rows affected in %s (file not found or not owner)", time.Since(start))
		return domain.ErrNotFound
	}
	r.logger.Printf("DeleteFile ok in %s id=%s", time.Since(start), id)
	return nil
}

func (r *PGRepo) CountShares(ctx context.Context, id domain.FileID) (int64, error) {
	q := r.qb().Select("count(*)").
		From(r.table("file_shares")).
		Where(sq.Eq{"file_id": id})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("CountShares", sqlStr, args)

	var n int64
	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		r.logger.Printf("CountShares scan error: %v", err)
		return 0, err
	}
	return n, nil
}

func scanFile(row pgx.Row) (domain.EncryptedFile, error) {
	var f domain.EncryptedFile
	err := row.Scan(
		&f.ID, &f.OwnerID, &f.Name, &f.SizeBytes,
		&f.Salt, &f.Nonce, &f.FileHash, &f.StorageKey,
		&f.CreatedAt, &f.UpdatedAt,
	)
	return f, err
}
