package ingestapp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/ordersight/backend/internal/domain/ingest"
	"github.com/ordersight/backend/internal/domain/shared"
	"github.com/ordersight/backend/internal/infrastructure/orderfile"
)

// fakeUploadRepo is an in-memory ingest.UploadRepository that records every
// persisted progress value so tests can assert monotonicity.
type fakeUploadRepo struct {
	mu       sync.Mutex
	uploads  map[uuid.UUID]*ingest.Upload
	progress []int
	saveErr  error
}

func newFakeUploadRepo() *fakeUploadRepo {
	return &fakeUploadRepo{uploads: make(map[uuid.UUID]*ingest.Upload)}
}

func (r *fakeUploadRepo) Save(_ context.Context, upload *ingest.Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	clone := *upload
	r.uploads[upload.ID] = &clone
	r.progress = append(r.progress, upload.RecordsProcessed)
	return nil
}

func (r *fakeUploadRepo) FindByID(_ context.Context, id uuid.UUID) (*ingest.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.uploads[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeUploadRepo) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*ingest.Upload, error) {
	upload, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upload.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return upload, nil
}

func (r *fakeUploadRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]*ingest.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*ingest.Upload
	for _, u := range r.uploads {
		if u.UserID == userID {
			clone := *u
			result = append(result, &clone)
		}
	}
	return result, nil
}

// fakeOrderRepo is an in-memory ingest.OrderRepository
type fakeOrderRepo struct {
	mu          sync.Mutex
	orders      []*ingest.Order
	insertCalls int
	batchErr    error
}

func (r *fakeOrderRepo) InsertBatch(_ context.Context, orders []*ingest.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertCalls++
	if r.batchErr != nil {
		return r.batchErr
	}
	for _, o := range orders {
		clone := *o
		r.orders = append(r.orders, &clone)
	}
	return nil
}

func (r *fakeOrderRepo) ExternalIDMap(_ context.Context, userID, uploadID uuid.UUID) (map[string]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idMap := make(map[string]uuid.UUID)
	for _, o := range r.orders {
		if o.UserID != userID || o.UploadID != uploadID {
			continue
		}
		if _, ok := idMap[o.ExternalOrderID]; !ok {
			idMap[o.ExternalOrderID] = o.ID
		}
	}
	return idMap, nil
}

func (r *fakeOrderRepo) CountByUpload(_ context.Context, userID, uploadID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, o := range r.orders {
		if o.UserID == userID && o.UploadID == uploadID {
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) DeleteByUpload(_ context.Context, userID, uploadID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.orders[:0]
	for _, o := range r.orders {
		if o.UserID != userID || o.UploadID != uploadID {
			kept = append(kept, o)
		}
	}
	r.orders = kept
	return nil
}

// fakeLineItemRepo is an in-memory ingest.LineItemRepository. It resolves
// upload scope through the order repo, mirroring the schema's FK chain.
type fakeLineItemRepo struct {
	mu       sync.Mutex
	items    []*ingest.LineItem
	orders   *fakeOrderRepo
	batchErr error
}

func (r *fakeLineItemRepo) InsertBatch(_ context.Context, items []*ingest.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.batchErr != nil {
		return r.batchErr
	}
	for _, li := range items {
		clone := *li
		r.items = append(r.items, &clone)
	}
	return nil
}

func (r *fakeLineItemRepo) uploadOrderIDs(userID, uploadID uuid.UUID) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool)
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()
	for _, o := range r.orders.orders {
		if o.UserID == userID && o.UploadID == uploadID {
			ids[o.ID] = true
		}
	}
	return ids
}

func (r *fakeLineItemRepo) CountByUpload(_ context.Context, userID, uploadID uuid.UUID) (int, error) {
	ids := r.uploadOrderIDs(userID, uploadID)
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, li := range r.items {
		if ids[li.OrderID] {
			n++
		}
	}
	return n, nil
}

func (r *fakeLineItemRepo) DeleteByUpload(_ context.Context, userID, uploadID uuid.UUID) error {
	ids := r.uploadOrderIDs(userID, uploadID)
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	for _, li := range r.items {
		if !ids[li.OrderID] {
			kept = append(kept, li)
		}
	}
	r.items = kept
	return nil
}

// fakeFileStore keeps blobs in memory and serves Fetch from a temp file
type fakeFileStore struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	tempDir  string
	fetchErr error
	cleanups int
}

func newFakeFileStore(tempDir string) *fakeFileStore {
	return &fakeFileStore{blobs: make(map[string][]byte), tempDir: tempDir}
}

func (s *fakeFileStore) Save(_ context.Context, key string, r io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return key, nil
}

func (s *fakeFileStore) Fetch(_ context.Context, ref string) (string, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return "", nil, s.fetchErr
	}
	data, ok := s.blobs[ref]
	if !ok {
		return "", nil, fmt.Errorf("blob %s not found", ref)
	}
	path := filepath.Join(s.tempDir, fmt.Sprintf("fetch-%d.tmp", s.cleanups))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", nil, err
	}
	cleanup := func() {
		s.mu.Lock()
		s.cleanups++
		s.mu.Unlock()
		_ = os.Remove(path)
	}
	return path, cleanup, nil
}

// fakeEnqueuer records enqueued tasks
type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []IngestionTask
	err   error
}

func (q *fakeEnqueuer) EnqueueIngestion(_ context.Context, task IngestionTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}

// sliceRows is a RowSource backed by a slice
type sliceRows struct {
	rows []*orderfile.Row
	pos  int
}

func (s *sliceRows) Next() (*orderfile.Row, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}
