package file

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/EgorLis/secure-files/internal/domain"
)

// cachedFile — сериализуемый снимок метаданных для кеша
// (у доменной модели служебные поля скрыты от JSON).
type cachedFile struct {
	ID         domain.FileID `json:"id"`
	OwnerID    domain.UserID `json:"owner_id"`
	Name       string        `json:"name"`
	SizeBytes  int64         `json:"size_bytes"`
	Salt       []byte        `json:"salt"`
	Nonce      []byte        `json:"nonce"`
	FileHash   string        `json:"file_hash"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	StorageKey string        `json:"storage_key"`
}

// loadFile достаёт метаданные из кеша или из БД (с прогревом кеша).
// Ошибки кеша не фатальны — источником истины остаётся БД.
func (h *Handler) loadFile(ctx context.Context, id domain.FileID) (domain.EncryptedFile, error) {
	key := domain.CacheKeyFileMeta(id)

	if raw, err := h.Cache.Get(ctx, key); err == nil && raw != nil {
		var c cachedFile
		if err := json.Unmarshal(raw, &c); err == nil {
			return domain.EncryptedFile{
				ID: c.ID, OwnerID: c.OwnerID, Name: c.Name,
				SizeBytes: c.SizeBytes, Salt: c.Salt, Nonce: c.Nonce,
				FileHash: c.FileHash, CreatedAt: c.CreatedAt,
				UpdatedAt: c.UpdatedAt, StorageKey: c.StorageKey,
			}, nil
		}
	}

	f, err := h.Files.FileByID(ctx, id)
	if err != nil {
		return domain.EncryptedFile{}, err
	}

	raw, err := json.Marshal(cachedFile{
		ID: f.ID, OwnerID: f.OwnerID, Name: f.Name,
		SizeBytes: f.SizeBytes, Salt: f.Salt, Nonce: f.Nonce,
		FileHash: f.FileHash, CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt, StorageKey: f.StorageKey,
	})
	if err == nil {
		_ = h.Cache.Set(ctx, key, raw, int(h.FileMetaTTL.Seconds()))
	}
	return f, nil
}

// authorize загружает файл и применяет гейт доступа для op.
// Возвращает также грант реквестера (nil для владельца/чужака).
func (h *Handler) authorize(ctx context.Context, op domain.FileOp, requester domain.UserID, id domain.FileID) (domain.EncryptedFile, *domain.FileShare, error) {
	f, err := h.loadFile(ctx, id)
	if err != nil {
		return domain.EncryptedFile{}, nil, err
	}

	var share *domain.FileShare
	if f.OwnerID != requester {
		share, err = h.Shares.ShareFor(ctx, id, requester)
		if err != nil {
			return domain.EncryptedFile{}, nil, err
		}
	}
	if err := domain.Authorize(op, requester, f, share, time.Now()); err != nil {
		return domain.EncryptedFile{}, nil, err
	}
	return f, share, nil
}

// parseFileID разбирает path-параметр id.
func parseFileID(s string) (domain.FileID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, domain.ErrBadParams
	}
	return id, nil
}
