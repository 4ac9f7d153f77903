package file

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/EgorLis/secure-files/internal/domain"
)

var testLog = log.New(io.Discard, "", 0)

// --- фейки ---

type fakeUsers struct {
	byID map[domain.UserID]domain.User
}

func newFakeUsers(users ...domain.User) *fakeUsers {
	f := &fakeUsers{byID: map[domain.UserID]domain.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Close()                     {}
func (f *fakeUsers) Ping(context.Context) error { return nil }
func (f *fakeUsers) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	return u, nil
}
func (f *fakeUsers) UserByEmail(_ context.Context, _ string) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound
}
func (f *fakeUsers) UserByID(_ context.Context, id domain.UserID) (domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}
func (f *fakeUsers) TouchLastLogin(context.Context, domain.UserID) error       { return nil }
func (f *fakeUsers) SetMFAEnabled(context.Context, domain.UserID, bool) error  { return nil }

type shareKey struct {
	file domain.FileID
	user domain.UserID
}

type fakeShares struct {
	mu     sync.Mutex
	shares map[shareKey]domain.FileShare
}

func newFakeShares() *fakeShares {
	return &fakeShares{shares: map[shareKey]domain.FileShare{}}
}

func (f *fakeShares) CreateShare(_ context.Context, s domain.FileShare) (domain.FileShare, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := shareKey{s.FileID, s.SharedWith}
	if _, ok := f.shares[k]; ok {
		return domain.FileShare{}, domain.ErrAlreadyShared
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	f.shares[k] = s
	return s, nil
}

func (f *fakeShares) ShareFor(_ context.Context, fileID domain.FileID, userID domain.UserID) (*domain.FileShare, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shares[shareKey{fileID, userID}]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeShares) DeleteShare(_ context.Context, fileID domain.FileID, userID domain.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := shareKey{fileID, userID}
	if _, ok := f.shares[k]; !ok {
		return domain.ErrNotFound
	}
	delete(f.shares, k)
	return nil
}

func (f *fakeShares) IncrementAccess(_ context.Context, fileID domain.FileID, userID domain.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := shareKey{fileID, userID}
	s, ok := f.shares[k]
	if !ok {
		return domain.ErrNotFound
	}
	s.AccessCount++
	f.shares[k] = s
	return nil
}

type fakeFiles struct {
	mu     sync.Mutex
	files  map[domain.FileID]domain.EncryptedFile
	shares *fakeShares
}

func newFakeFiles(shares *fakeShares) *fakeFiles {
	return &fakeFiles{files: map[domain.FileID]domain.EncryptedFile{}, shares: shares}
}

func (f *fakeFiles) CreateFile(_ context.Context, e domain.EncryptedFile) (domain.EncryptedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	f.files[e.ID] = e
	return e, nil
}

func (f *fakeFiles) FileByID(_ context.Context, id domain.FileID) (domain.EncryptedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.files[id]
	if !ok {
		return domain.EncryptedFile{}, domain.ErrNotFound
	}
	return e, nil
}

func (f *fakeFiles) ListVisible(_ context.Context, requester domain.UserID) ([]domain.EncryptedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var out []domain.EncryptedFile
	for _, e := range f.files {
		if e.OwnerID == requester {
			out = append(out, e)
			continue
		}
		if s, ok := f.shares.shares[shareKey{e.ID, requester}]; ok && !s.Expired(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeFiles) DeleteFile(_ context.Context, id domain.FileID, owner domain.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.files[id]
	if !ok || e.OwnerID != owner {
		return domain.ErrNotFound
	}
	delete(f.files, id)
	for k := range f.shares.shares {
		if k.file == id {
			delete(f.shares.shares, k)
		}
	}
	return nil
}

func (f *fakeFiles) CountShares(_ context.Context, id domain.FileID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.shares.shares {
		if k.file == id {
			n++
		}
	}
	return n, nil
}

type fakeStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeStorage() *fakeStorage { return &fakeStorage{blobs: map[string][]byte{}} }

func (f *fakeStorage) Put(_ context.Context, r io.Reader, key string) (domain.BlobPutResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.BlobPutResult{}, err
	}
	f.mu.Lock()
	f.blobs[key] = data
	f.mu.Unlock()
	sum := sha256.Sum256(data)
	return domain.BlobPutResult{Size: int64(len(data)), SHA256: sum[:]}, nil
}

func (f *fakeStorage) Get(_ context.Context, key string) (io.ReadCloser, int64, error) {
	f.mu.Lock()
	data, ok := f.blobs[key]
	f.mu.Unlock()
	if !ok {
		return nil, 0, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	delete(f.blobs, key)
	f.mu.Unlock()
	return nil
}

func (f *fakeStorage) Ping(context.Context) error { return nil }

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key], nil
}
func (f *fakeCache) Set(_ context.Context, key string, val []byte, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = val
	return nil
}
func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}
func (f *fakeCache) SetNX(_ context.Context, key string, val []byte, _ int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = val
	return true, nil
}
func (f *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok, nil
}
func (f *fakeCache) Ping(context.Context) error { return nil }
func (f *fakeCache) Close()                     {}

// --- тестовая обвязка ---

type env struct {
	h       *Handler
	users   *fakeUsers
	files   *fakeFiles
	shares  *fakeShares
	storage *fakeStorage
	cache   *fakeCache
}

func newEnv(users ...domain.User) *env {
	shares := newFakeShares()
	files := newFakeFiles(shares)
	storage := newFakeStorage()
	cache := newFakeCache()
	fu := newFakeUsers(users...)
	return &env{
		h: &Handler{
			Log:            testLog,
			Users:          fu,
			Files:          files,
			Shares:         shares,
			Storage:        storage,
			Cache:          cache,
			MaxUploadBytes: 100 << 20,
			FileMetaTTL:    time.Minute,
		},
		users:   fu,
		files:   files,
		shares:  shares,
		storage: storage,
		cache:   cache,
	}
}

func user(role domain.Role) domain.User {
	return domain.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Username: "u" + uuid.NewString()[:8],
		IsActive: true,
		Role:     role,
	}
}

func asUser(req *http.Request, u domain.User) *http.Request {
	ctx := domain.WithUser(req.Context(), u)
	ctx = domain.WithClaims(ctx, domain.TokenClaims{JTI: "jti-" + u.ID.String(), UserID: u.ID, Kind: domain.TokenAccess})
	return req.WithContext(ctx)
}

func multipartUpload(t *testing.T, name string, content []byte, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mp := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mp.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	fw, err := mp.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write content: %v", err)
	}
	if err := mp.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mp.FormDataContentType()
}

func encMetaFields() map[string]string {
	return map[string]string{
		"encryption_salt":  base64.StdEncoding.EncodeToString([]byte("salt-16-bytes!!!")),
		"encryption_nonce": base64.StdEncoding.EncodeToString([]byte("nonce-12-byte")),
	}
}

func (e *env) upload(t *testing.T, u domain.User, name string, content []byte) domain.FileID {
	t.Helper()
	body, ctype := multipartUpload(t, name, content, encMetaFields())
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/files", body), u)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	e.h.Upload(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Response fileView `json:"response"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	return out.Response.ID
}

func pathReq(method, path string, u domain.User, body io.Reader, pathValues map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, body)
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	return asUser(req, u)
}

func wantErrCode(t *testing.T, rec *httptest.ResponseRecorder, status, code int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, status, rec.Body.String())
	}
	var env domain.APIEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("error = %+v, want code %d", env.Error, code)
	}
}

// --- upload ---

func TestUploadStoresBlobAndHash(t *testing.T) {
	owner := user(domain.RoleUser)
	e := newEnv(owner)
	content := []byte("opaque ciphertext bytes")

	id := e.upload(t, owner, "report.pdf", content)

	f, err := e.files.FileByID(context.Background(), id)
	if err != nil {
		t.Fatalf("file not persisted: %v", err)
	}
	sum := sha256.Sum256(content)
	if f.FileHash != hex.EncodeToString(sum[:]) {
		t.Errorf("file_hash = %s, want sha256 of content", f.FileHash)
	}
	if f.SizeBytes != int64(len(content)) {
		t.Errorf("size = %d, want %d", f.SizeBytes, len(content))
	}
	if len(f.Salt) == 0 || len(f.Nonce) == 0 {
		t.Error("encryption metadata lost")
	}
	if _, ok := e.storage.blobs[f.StorageKey]; !ok {
		t.Error("blob missing in storage")
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	owner := user(domain.RoleUser)
	e := newEnv(owner)

	body, ctype := multipartUpload(t, "malware.exe", []byte("x"), encMetaFields())
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/files", body), owner)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	e.h.Upload(rec, req)

	wantErrCode(t, rec, http.StatusBadRequest, domain.ErrCodeUnsupportedType)
	if len(e.storage.blobs) != 0 {
		t.Error("rejected upload must not leave blobs behind")
	}
}

func TestUploadRequiresEncryptionMetadata(t *testing.T) {
	owner := user(domain.RoleUser)
	e := newEnv(owner)

	body, ctype := multipartUpload(t, "report.pdf", []byte("x"), nil)
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/files", body), owner)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	e.h.Upload(rec, req)

	wantErrCode(t, rec, http.StatusBadRequest, domain.ErrCodeMissingEncMeta)
}

func TestUploadForbiddenForGuest(t *testing.T) {
	guest := user(domain.RoleGuest)
	e := newEnv(guest)

	body, ctype := multipartUpload(t, "report.pdf", []byte("x"), encMetaFields())
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/files", body), guest)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	e.h.Upload(rec, req)

	wantErrCode(t, rec, http.StatusForbidden, domain.ErrCodeForbidden)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	owner := user(domain.RoleUser)
	e := newEnv(owner)
	e.h.MaxUploadBytes = 10

	body, ctype := multipartUpload(t, "report.pdf", bytes.Repeat([]byte("a"), 64), encMetaFields())
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/files", body), owner)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	e.h.Upload(rec, req)

	wantErrCode(t, rec, http.StatusBadRequest, domain.ErrCodeTooLarge)
}

// --- getone ---

func TestGetOneNotFoundVsForbidden(t *testing.T) {
	owner := user(domain.RoleUser)
	stranger := user(domain.RoleUser)
	e := newEnv(owner, stranger)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	// несуществующий id — 404
	rec := httptest.NewRecorder()
	e.h.GetOne(rec, pathReq(http.MethodGet, "/api/v1/files/x", stranger, nil,
		map[string]string{"id": uuid.NewString()}))
	wantErrCode(t, rec, http.StatusNotFound, domain.ErrCodeNotFound)

	// существующий, но чужой — 403, само существование не скрываем
	rec = httptest.NewRecorder()
	e.h.GetOne(rec, pathReq(http.MethodGet, "/api/v1/files/x", stranger, nil,
		map[string]string{"id": id.String()}))
	wantErrCode(t, rec, http.StatusForbidden, domain.ErrCodeForbidden)
}

func TestGetOneOwnerSeesShareCount(t *testing.T) {
	owner := user(domain.RoleUser)
	grantee := user(domain.RoleUser)
	e := newEnv(owner, grantee)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	_, err := e.shares.CreateShare(context.Background(), domain.FileShare{
		FileID: id, SharedWith: grantee.ID, SharedBy: owner.ID,
	})
	if err != nil {
		t.Fatalf("CreateShare: %v", err)
	}

	rec := httptest.NewRecorder()
	e.h.GetOne(rec, pathReq(http.MethodGet, "/api/v1/files/x", owner, nil,
		map[string]string{"id": id.String()}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Response fileView `json:"response"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Response.IsOwner || out.Response.SharedWithCount != 1 {
		t.Fatalf("view = %+v", out.Response)
	}
}

// --- download ---

func TestDownloadByOwner(t *testing.T) {
	owner := user(domain.RoleUser)
	e := newEnv(owner)
	content := []byte("ciphertext payload")
	id := e.upload(t, owner, "report.pdf", content)

	rec := httptest.NewRecorder()
	e.h.Download(rec, pathReq(http.MethodGet, "/api/v1/files/x/download", owner, nil,
		map[string]string{"id": id.String()}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Error("downloaded bytes differ from uploaded")
	}
	sum := sha256.Sum256(rec.Body.Bytes())
	if rec.Header().Get("X-File-Hash") != hex.EncodeToString(sum[:]) {
		t.Error("X-File-Hash must match the streamed bytes")
	}
	if rec.Header().Get("X-Encryption-Salt") == "" || rec.Header().Get("X-Encryption-Nonce") == "" {
		t.Error("encryption metadata headers missing")
	}
	if rec.Header().Get("Content-Disposition") == "" {
		t.Error("Content-Disposition missing")
	}
}

func TestDownloadByGranteeIncrementsAccessCount(t *testing.T) {
	owner := user(domain.RoleUser)
	grantee := user(domain.RoleUser)
	e := newEnv(owner, grantee)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	_, err := e.shares.CreateShare(context.Background(), domain.FileShare{
		FileID: id, SharedWith: grantee.ID, SharedBy: owner.ID,
	})
	if err != nil {
		t.Fatalf("CreateShare: %v", err)
	}

	const n = 5
	for i := 0; i < n; i++ {
		rec := httptest.NewRecorder()
		e.h.Download(rec, pathReq(http.MethodGet, "/api/v1/files/x/download", grantee, nil,
			map[string]string{"id": id.String()}))
		if rec.Code != http.StatusOK {
			t.Fatalf("download %d: status = %d", i, rec.Code)
		}
	}

	s, _ := e.shares.ShareFor(context.Background(), id, grantee.ID)
	if s.AccessCount != n {
		t.Fatalf("access_count = %d, want %d", s.AccessCount, n)
	}
}

func TestParallelGranteeDownloadsCountEachOne(t *testing.T) {
	owner := user(domain.RoleUser)
	grantee := user(domain.RoleUser)
	e := newEnv(owner, grantee)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	_, err := e.shares.CreateShare(context.Background(), domain.FileShare{
		FileID: id, SharedWith: grantee.ID, SharedBy: owner.ID,
	})
	if err != nil {
		t.Fatalf("CreateShare: %v", err)
	}

	// одновременные скачивания не должны терять инкременты
	const n = 16
	codes := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			e.h.Download(rec, pathReq(http.MethodGet, "/api/v1/files/x/download", grantee, nil,
				map[string]string{"id": id.String()}))
			codes <- rec.Code
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		if code != http.StatusOK {
			t.Errorf("parallel download status = %d", code)
		}
	}

	s, _ := e.shares.ShareFor(context.Background(), id, grantee.ID)
	if s.AccessCount != n {
		t.Fatalf("access_count = %d, want exactly %d", s.AccessCount, n)
	}
}

func TestFailedDownloadDoesNotCount(t *testing.T) {
	owner := user(domain.RoleUser)
	grantee := user(domain.RoleUser)
	e := newEnv(owner, grantee)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	_, _ = e.shares.CreateShare(context.Background(), domain.FileShare{
		FileID: id, SharedWith: grantee.ID, SharedBy: owner.ID,
	})

	// blob недоступен — скачивание падает и не засчитывается
	e.storage.mu.Lock()
	e.storage.blobs = map[string][]byte{}
	e.storage.mu.Unlock()

	rec := httptest.NewRecorder()
	e.h.Download(rec, pathReq(http.MethodGet, "/api/v1/files/x/download", grantee, nil,
		map[string]string{"id": id.String()}))
	wantErrCode(t, rec, http.StatusInternalServerError, domain.ErrCodeStorage)

	s, _ := e.shares.ShareFor(context.Background(), id, grantee.ID)
	if s.AccessCount != 0 {
		t.Fatalf("failed download must not count, got %d", s.AccessCount)
	}
}

func TestDownloadByOwnerDoesNotTouchAccessCount(t *testing.T) {
	owner := user(domain.RoleUser)
	grantee := user(domain.RoleUser)
	e := newEnv(owner, grantee)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	_, _ = e.shares.CreateShare(context.Background(), domain.FileShare{
		FileID: id, SharedWith: grantee.ID, SharedBy: owner.ID,
	})

	rec := httptest.NewRecorder()
	e.h.Download(rec, pathReq(http.MethodGet, "/api/v1/files/x/download", owner, nil,
		map[string]string{"id": id.String()}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	s, _ := e.shares.ShareFor(context.Background(), id, grantee.ID)
	if s.AccessCount != 0 {
		t.Fatalf("owner download must not change access_count, got %d", s.AccessCount)
	}
}

func TestDownloadDeniedForStranger(t *testing.T) {
	owner := user(domain.RoleUser)
	stranger := user(domain.RoleUser)
	e := newEnv(owner, stranger)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	rec := httptest.NewRecorder()
	e.h.Download(rec, pathReq(http.MethodGet, "/api/v1/files/x/download", stranger, nil,
		map[string]string{"id": id.String()}))
	wantErrCode(t, rec, http.StatusForbidden, domain.ErrCodeForbidden)
}

func TestExpiredShareDeniedButRowRetained(t *testing.T) {
	owner := user(domain.RoleUser)
	grantee := user(domain.RoleUser)
	e := newEnv(owner, grantee)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	past := time.Now().Add(-time.Hour)
	_, err := e.shares.CreateShare(context.Background(), domain.FileShare{
		FileID: id, SharedWith: grantee.ID, SharedBy: owner.ID, ExpiresAt: &past,
	})
	if err != nil {
		t.Fatalf("CreateShare: %v", err)
	}

	// скачивание по истёкшему гранту запрещено
	rec := httptest.NewRecorder()
	e.h.Download(rec, pathReq(http.MethodGet, "/api/v1/files/x/download", grantee, nil,
		map[string]string{"id": id.String()}))
	wantErrCode(t, rec, http.StatusForbidden, domain.ErrCodeForbidden)

	// файл пропадает из списка
	rec = httptest.NewRecorder()
	e.h.List(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/files", nil), grantee))
	var out struct {
		Data []listItem `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(out.Data) != 0 {
		t.Fatalf("expired share must hide the file, got %d items", len(out.Data))
	}

	// но запись гранта остаётся (история)
	s, _ := e.shares.ShareFor(context.Background(), id, grantee.ID)
	if s == nil {
		t.Fatal("expired share row must be retained")
	}

	// и повторный шаринг всё равно конфликт
	_, err = e.shares.CreateShare(context.Background(), domain.FileShare{
		FileID: id, SharedWith: grantee.ID, SharedBy: owner.ID,
	})
	if err != domain.ErrAlreadyShared {
		t.Fatalf("re-share after expiry: err = %v, want ErrAlreadyShared", err)
	}
}

// --- list ---

func TestListShowsOwnAndShared(t *testing.T) {
	owner := user(domain.RoleUser)
	grantee := user(domain.RoleUser)
	e := newEnv(owner, grantee)

	ownID := e.upload(t, grantee, "mine.txt", []byte("mine"))
	sharedID := e.upload(t, owner, "theirs.pdf", []byte("theirs"))
	e.upload(t, owner, "hidden.pdf", []byte("hidden"))

	_, _ = e.shares.CreateShare(context.Background(), domain.FileShare{
		FileID: sharedID, SharedWith: grantee.ID, SharedBy: owner.ID,
	})

	rec := httptest.NewRecorder()
	e.h.List(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/files", nil), grantee))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out struct {
		Data []listItem `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Data) != 2 {
		t.Fatalf("items = %d, want 2", len(out.Data))
	}
	got := map[domain.FileID]listItem{}
	for _, it := range out.Data {
		got[it.ID] = it
	}
	if !got[ownID].IsOwner {
		t.Error("own file must be marked is_owner")
	}
	if got[sharedID].IsOwner {
		t.Error("shared file must not be marked is_owner")
	}
	if got[sharedID].Owner.ID != owner.ID {
		t.Error("shared file must carry the real owner")
	}
}

// --- delete ---

func TestDeleteByOwnerCascades(t *testing.T) {
	owner := user(domain.RoleUser)
	grantee := user(domain.RoleUser)
	e := newEnv(owner, grantee)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	_, _ = e.shares.CreateShare(context.Background(), domain.FileShare{
		FileID: id, SharedWith: grantee.ID, SharedBy: owner.ID,
	})

	rec := httptest.NewRecorder()
	e.h.Delete(rec, pathReq(http.MethodDelete, "/api/v1/files/x", owner, nil,
		map[string]string{"id": id.String()}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	if _, err := e.files.FileByID(context.Background(), id); err != domain.ErrNotFound {
		t.Error("metadata must be gone")
	}
	if s, _ := e.shares.ShareFor(context.Background(), id, grantee.ID); s != nil {
		t.Error("shares must be gone with the file")
	}
	if len(e.storage.blobs) != 0 {
		t.Error("blob must be deleted")
	}
	if _, ok := e.cache.data[domain.CacheKeyFileMeta(id)]; ok {
		t.Error("cached metadata must be invalidated")
	}

	// грантополучателю файл больше не виден
	rec = httptest.NewRecorder()
	e.h.GetOne(rec, pathReq(http.MethodGet, "/api/v1/files/x", grantee, nil,
		map[string]string{"id": id.String()}))
	wantErrCode(t, rec, http.StatusNotFound, domain.ErrCodeNotFound)
}

func TestDeleteDeniedForGrantee(t *testing.T) {
	owner := user(domain.RoleUser)
	grantee := user(domain.RoleUser)
	e := newEnv(owner, grantee)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	_, _ = e.shares.CreateShare(context.Background(), domain.FileShare{
		FileID: id, SharedWith: grantee.ID, SharedBy: owner.ID,
	})

	rec := httptest.NewRecorder()
	e.h.Delete(rec, pathReq(http.MethodDelete, "/api/v1/files/x", grantee, nil,
		map[string]string{"id": id.String()}))
	wantErrCode(t, rec, http.StatusForbidden, domain.ErrCodeForbidden)
}

// --- share ---

func shareBody(t *testing.T, userID domain.UserID, expiresAt *time.Time) io.Reader {
	t.Helper()
	m := map[string]any{"user_id": userID}
	if expiresAt != nil {
		m["expires_at"] = expiresAt
	}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(raw)
}

func TestShareHappyPathAndDuplicate(t *testing.T) {
	owner := user(domain.RoleUser)
	grantee := user(domain.RoleUser)
	e := newEnv(owner, grantee)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	rec := httptest.NewRecorder()
	e.h.Share(rec, pathReq(http.MethodPost, "/api/v1/files/x/share", owner,
		shareBody(t, grantee.ID, nil), map[string]string{"id": id.String()}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	// дубликат — конфликт
	rec = httptest.NewRecorder()
	e.h.Share(rec, pathReq(http.MethodPost, "/api/v1/files/x/share", owner,
		shareBody(t, grantee.ID, nil), map[string]string{"id": id.String()}))
	wantErrCode(t, rec, http.StatusConflict, domain.ErrCodeAlreadyShared)
}

func TestShareDeniedForNonOwner(t *testing.T) {
	owner := user(domain.RoleUser)
	grantee := user(domain.RoleUser)
	third := user(domain.RoleUser)
	e := newEnv(owner, grantee, third)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	_, _ = e.shares.CreateShare(context.Background(), domain.FileShare{
		FileID: id, SharedWith: grantee.ID, SharedBy: owner.ID,
	})

	// грантополучатель не может пересылать дальше
	rec := httptest.NewRecorder()
	e.h.Share(rec, pathReq(http.MethodPost, "/api/v1/files/x/share", grantee,
		shareBody(t, third.ID, nil), map[string]string{"id": id.String()}))
	wantErrCode(t, rec, http.StatusForbidden, domain.ErrCodeForbidden)
}

func TestShareUnknownUser(t *testing.T) {
	owner := user(domain.RoleUser)
	e := newEnv(owner)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	rec := httptest.NewRecorder()
	e.h.Share(rec, pathReq(http.MethodPost, "/api/v1/files/x/share", owner,
		shareBody(t, uuid.New(), nil), map[string]string{"id": id.String()}))
	wantErrCode(t, rec, http.StatusNotFound, domain.ErrCodeUserNotFound)
}

func TestShareWithSelf(t *testing.T) {
	owner := user(domain.RoleUser)
	e := newEnv(owner)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	rec := httptest.NewRecorder()
	e.h.Share(rec, pathReq(http.MethodPost, "/api/v1/files/x/share", owner,
		shareBody(t, owner.ID, nil), map[string]string{"id": id.String()}))
	wantErrCode(t, rec, http.StatusBadRequest, domain.ErrCodeBadParams)
}

func TestShareRejectsPastExpiry(t *testing.T) {
	owner := user(domain.RoleUser)
	grantee := user(domain.RoleUser)
	e := newEnv(owner, grantee)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	past := time.Now().Add(-time.Minute)
	rec := httptest.NewRecorder()
	e.h.Share(rec, pathReq(http.MethodPost, "/api/v1/files/x/share", owner,
		shareBody(t, grantee.ID, &past), map[string]string{"id": id.String()}))
	wantErrCode(t, rec, http.StatusBadRequest, domain.ErrCodeBadParams)
}

// --- revoke ---

func TestRevokeShare(t *testing.T) {
	owner := user(domain.RoleUser)
	grantee := user(domain.RoleUser)
	e := newEnv(owner, grantee)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	_, _ = e.shares.CreateShare(context.Background(), domain.FileShare{
		FileID: id, SharedWith: grantee.ID, SharedBy: owner.ID,
	})

	rec := httptest.NewRecorder()
	e.h.Revoke(rec, pathReq(http.MethodDelete, "/api/v1/files/x/share/y", owner, nil,
		map[string]string{"id": id.String(), "user_id": grantee.ID.String()}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	// доступ пропал сразу
	rec = httptest.NewRecorder()
	e.h.Download(rec, pathReq(http.MethodGet, "/api/v1/files/x/download", grantee, nil,
		map[string]string{"id": id.String()}))
	wantErrCode(t, rec, http.StatusForbidden, domain.ErrCodeForbidden)
}

func TestRevokeDeniedForGrantee(t *testing.T) {
	owner := user(domain.RoleUser)
	grantee := user(domain.RoleUser)
	e := newEnv(owner, grantee)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	_, _ = e.shares.CreateShare(context.Background(), domain.FileShare{
		FileID: id, SharedWith: grantee.ID, SharedBy: owner.ID,
	})

	rec := httptest.NewRecorder()
	e.h.Revoke(rec, pathReq(http.MethodDelete, "/api/v1/files/x/share/y", grantee, nil,
		map[string]string{"id": id.String(), "user_id": grantee.ID.String()}))
	wantErrCode(t, rec, http.StatusForbidden, domain.ErrCodeForbidden)
}

// --- кеш метаданных ---

func TestFileMetaCacheWarmAndInvalidate(t *testing.T) {
	owner := user(domain.RoleUser)
	e := newEnv(owner)
	id := e.upload(t, owner, "report.pdf", []byte("data"))

	// первый запрос прогревает кеш
	rec := httptest.NewRecorder()
	e.h.GetOne(rec, pathReq(http.MethodGet, "/api/v1/files/x", owner, nil,
		map[string]string{"id": id.String()}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, ok := e.cache.data[domain.CacheKeyFileMeta(id)]; !ok {
		t.Fatal("metadata must be cached after first read")
	}

	// повторный запрос отвечает из кеша даже без строки в БД
	e.files.mu.Lock()
	stash := e.files.files[id]
	delete(e.files.files, id)
	e.files.mu.Unlock()

	rec = httptest.NewRecorder()
	e.h.GetOne(rec, pathReq(http.MethodGet, "/api/v1/files/x", owner, nil,
		map[string]string{"id": id.String()}))
	if rec.Code != http.StatusOK {
		t.Fatalf("cached read status = %d", rec.Code)
	}

	e.files.mu.Lock()
	e.files.files[id] = stash
	e.files.mu.Unlock()
}
