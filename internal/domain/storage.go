package domain

import (
	"context"
	"io"
)

// Хранилище шифротекста (S3/MinIO). Содержимое непрозрачно —
// сервер никогда не интерпретирует байты.
type BlobPutResult struct {
	Size   int64
	SHA256 []byte // дайджест шифротекста, посчитан при стриминге
}

type BlobStorage interface {
	// Put сохраняет поток под ключом key, попутно считая sha256
	// (одним проходом, без буферизации всего тела).
	Put(ctx context.Context, r io.Reader, key string) (BlobPutResult, error)
	// Get открывает поток для отдачи клиенту.
	Get(ctx context.Context, key string) (io.ReadCloser, int64, error)
	// Delete — best-effort: вызывающий логирует, но не падает.
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
