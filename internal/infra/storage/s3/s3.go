package s3

import (
	"context"
	"crypto/sha256"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/EgorLis/secure-files/internal/domain"
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

type Storage struct {
	cl     *minio.Client
	bucket string
	logger *log.Logger
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Storage, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}
	return &Storage{cl: cl, bucket: cfg.Bucket, logger: logger}, nil
}

var _ domain.BlobStorage = (*Storage)(nil)

// Put загружает поток под ключ key, попутно считая sha256 через пайп —
// тело не буферизуется целиком. Содержимое — шифротекст, Content-Type
// всегда octet-stream.
func (s *Storage) Put(ctx context.Context, r io.Reader, key string) (domain.BlobPutResult, error) {
	h := sha256.New()
	pr, pw := io.Pipe()
	mw := io.MultiWriter(h, pw)

	// копируем в пайп и считаем sha параллельно
	go func() {
		_, copyErr := io.Copy(mw, r)
		pw.CloseWithError(copyErr)
	}()

	info, err := s.cl.PutObject(ctx, s.bucket, key, pr, -1, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		s.logger.Printf("put %q failed: %v", key, err)
		return domain.BlobPutResult{}, err
	}

	s.logger.Printf("put %q ok size=%d", key, info.Size)
	return domain.BlobPutResult{Size: info.Size, SHA256: h.Sum(nil)}, nil
}

// Get открывает поток для отдачи клиенту.
func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	info, err := s.cl.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		s.logger.Printf("stat %q failed: %v", key, err)
		return nil, 0, err
	}

	obj, err := s.cl.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		s.logger.Printf("get %q failed: %v", key, err)
		return nil, 0, err
	}
	return obj, info.Size, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.cl.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *Storage) Ping(ctx context.Context) error {
	_, err := s.cl.BucketExists(ctx, s.bucket)
	return err
}
