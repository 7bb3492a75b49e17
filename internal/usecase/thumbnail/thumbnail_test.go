package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/image-uploader/internal/entity"
	"github.com/andreyxaxa/image-uploader/pkg/logger"
	"github.com/andreyxaxa/image-uploader/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	types map[string]string
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, contentType string, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	m.types[key] = contentType

	return nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("no such key %s", key)
	}

	return b, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)

	return nil
}

type fakeObjects struct {
	processed map[uuid.UUID]string
	failed    []uuid.UUID
	markErr   error
}

func (f *fakeObjects) Create(context.Context, *entity.StoredObject) error { return nil }

func (f *fakeObjects) GetByID(context.Context, uuid.UUID) (*entity.StoredObject, error) {
	return nil, errs.ErrRecordNotFound
}

func (f *fakeObjects) MarkProcessed(_ context.Context, id uuid.UUID, thumbnailKey string, _ time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.processed[id] = thumbnailKey

	return nil
}

func (f *fakeObjects) MarkFailed(_ context.Context, id uuid.UUID) error {
	f.failed = append(f.failed, id)

	return nil
}

type stubProcessor struct {
	err error
}

func (s stubProcessor) Thumbnail(_ context.Context, contentType string, data []byte) ([]byte, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	if contentType == "image/webp" {
		contentType = "image/jpeg"
	}

	return append([]byte("thumb:"), data...), contentType, nil
}

func TestKey(t *testing.T) {
	assert.Equal(t, "thumbnails/1718000000123-abc.png", Key("1718000000123-abc.png", "image/png"))
	assert.Equal(t, "thumbnails/1718000000123-abc.jpg", Key("1718000000123-abc.webp", "image/jpeg"))
	assert.Equal(t, "thumbnails/noext.jpg", Key("noext", "image/jpeg"))
}

func TestRenderStoresThumbnailAndMarksProcessed(t *testing.T) {
	store := newMemStore()
	objects := &fakeObjects{processed: map[uuid.UUID]string{}}
	uc := New(store, objects, stubProcessor{}, time.Second, logger.New("error"))

	id := uuid.New()
	store.blobs["1-a.webp"] = []byte("webp-bytes")

	key, err := uc.Render(context.Background(), entity.UploadStoredPayload{ID: id, Key: "1-a.webp", ContentType: "image/webp"})
	require.NoError(t, err)

	assert.Equal(t, "thumbnails/1-a.jpg", key)
	assert.Equal(t, []byte("thumb:webp-bytes"), store.blobs[key])
	assert.Equal(t, "image/jpeg", store.types[key])
	assert.Equal(t, key, objects.processed[id])
}

func TestRenderUndecodableMarksFailed(t *testing.T) {
	store := newMemStore()
	store.blobs["1-a.png"] = []byte("junk")
	objects := &fakeObjects{processed: map[uuid.UUID]string{}}
	uc := New(store, objects, stubProcessor{err: fmt.Errorf("decode: %w", errs.ErrUnsupportedEncoding)}, time.Second, logger.New("error"))

	id := uuid.New()
	key, err := uc.Render(context.Background(), entity.UploadStoredPayload{ID: id, Key: "1-a.png", ContentType: "image/png"})
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.Equal(t, []uuid.UUID{id}, objects.failed)
}

func TestRenderLedgerFailureRemovesThumbnail(t *testing.T) {
	store := newMemStore()
	store.blobs["1-a.png"] = []byte("png")
	objects := &fakeObjects{processed: map[uuid.UUID]string{}, markErr: errors.New("db down")}
	uc := New(store, objects, stubProcessor{}, time.Second, logger.New("error"))

	_, err := uc.Render(context.Background(), entity.UploadStoredPayload{ID: uuid.New(), Key: "1-a.png", ContentType: "image/png"})
	require.Error(t, err)

	_, ok := store.blobs["thumbnails/1-a.png"]
	assert.False(t, ok)
}

func TestRenderMissingOriginal(t *testing.T) {
	uc := New(newMemStore(), &fakeObjects{processed: map[uuid.UUID]string{}}, stubProcessor{}, time.Second, logger.New("error"))

	_, err := uc.Render(context.Background(), entity.UploadStoredPayload{ID: uuid.New(), Key: "gone.png", ContentType: "image/png"})
	require.Error(t, err)
}
