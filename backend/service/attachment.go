package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"sync"

	"github.com/google/uuid"

	"github.com/AnTengye/contractdesk/backend/model"
)

var (
	ErrNoAttachment       = errors.New("contract has no attachment")
	ErrAttachmentTooLarge = errors.New("attachment exceeds size limit")
	ErrBlobNotFound       = errors.New("attachment blob not found")
)

// AttachmentStore keeps uploaded contract files
type AttachmentStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL is where a client can download key
	URL(ctx context.Context, key string) (string, error)
}

// RawRoute is the download route served for the in-memory backend
const RawRoute = "/api/attachments/"

type blob struct {
	data        []byte
	contentType string
}

// MemoryAttachmentStore keeps blobs in process memory
type MemoryAttachmentStore struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

// NewMemoryAttachmentStore returns an empty in-process blob store
func NewMemoryAttachmentStore() *MemoryAttachmentStore {
	return &MemoryAttachmentStore{blobs: make(map[string]blob)}
}

// Put stores the contents of r under key
func (m *MemoryAttachmentStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("failed to read attachment: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = blob{data: buf.Bytes(), contentType: contentType}
	return nil
}

// Delete drops key; unknown keys are ignored
func (m *MemoryAttachmentStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

// URL returns the raw download route for key
func (m *MemoryAttachmentStore) URL(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.blobs[key]; !ok {
		return "", fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	}
	return RawRoute + key, nil
}

// Open returns the stored bytes and content type of key
func (m *MemoryAttachmentStore) Open(key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[key]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	}
	return b.data, b.contentType, nil
}

// Len is the number of stored blobs
func (m *MemoryAttachmentStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// Locator tells a client how to fetch an attachment
type Locator struct {
	Kind     model.AttachmentKind `json:"kind"`
	URL      string               `json:"url"`
	Filename string               `json:"filename"`
}

// AttachmentService binds uploaded files to ledger records
type AttachmentService struct {
	store    AttachmentStore
	maxBytes int64
}

// NewAttachmentService stores blobs in store and rejects uploads over maxBytes
func NewAttachmentService(store AttachmentStore, maxBytes int64) *AttachmentService {
	return &AttachmentService{store: store, maxBytes: maxBytes}
}

// Upload stores r and attaches it to record id of ledger, replacing and
// releasing any previous upload.
func (s *AttachmentService) Upload(ctx context.Context, ledger *ContractStore, id, filename, contentType string, size int64, r io.Reader) (model.Attachment, error) {
	if s.maxBytes > 0 && size > s.maxBytes {
		return model.Attachment{}, fmt.Errorf("%w: %d bytes", ErrAttachmentTooLarge, size)
	}
	if _, err := ledger.Get(id); err != nil {
		return model.Attachment{}, err
	}

	name := path.Base(filename)
	if name == "." || name == "/" {
		name = "contract_file"
	}
	key := path.Join(ledger.Name(), id, uuid.New().String(), name)
	if err := s.store.Put(ctx, key, r, size, contentType); err != nil {
		return model.Attachment{}, err
	}

	att := model.UploadedAttachment(key, name, contentType, size)
	prev, err := ledger.SetAttachment(id, att)
	if err != nil {
		// record vanished between Get and SetAttachment
		s.release(ctx, att)
		return model.Attachment{}, err
	}
	s.release(ctx, prev)
	return att, nil
}

// Link attaches an external URL to record id, releasing any previous upload
func (s *AttachmentService) Link(ctx context.Context, ledger *ContractStore, id, rawURL string) (model.Attachment, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return model.Attachment{}, fmt.Errorf("invalid attachment url %q", rawURL)
	}
	att := model.ExternalAttachment(rawURL)
	prev, err := ledger.SetAttachment(id, att)
	if err != nil {
		return model.Attachment{}, err
	}
	s.release(ctx, prev)
	return att, nil
}

// Remove clears the attachment of record id
func (s *AttachmentService) Remove(ctx context.Context, ledger *ContractStore, id string) error {
	prev, err := ledger.SetAttachment(id, model.NoAttachment())
	if err != nil {
		return err
	}
	s.release(ctx, prev)
	return nil
}

// Release frees the uploaded files of records that were deleted
func (s *AttachmentService) Release(ctx context.Context, records []model.Contract) {
	for _, c := range records {
		s.release(ctx, c.Attachment)
	}
}

// Locate resolves where the attachment of record id can be downloaded
func (s *AttachmentService) Locate(ctx context.Context, ledger *ContractStore, id string) (Locator, error) {
	c, err := ledger.Get(id)
	if err != nil {
		return Locator{}, err
	}
	a := c.Attachment
	if !a.Present() {
		return Locator{}, ErrNoAttachment
	}

	loc := Locator{Kind: a.Kind, Filename: a.DownloadName()}
	if a.Kind == model.AttachmentExternal {
		loc.URL = a.URL
		return loc, nil
	}
	loc.URL, err = s.store.URL(ctx, a.Key)
	if err != nil {
		return Locator{}, err
	}
	return loc, nil
}

func (s *AttachmentService) release(ctx context.Context, a model.Attachment) {
	if a.Kind != model.AttachmentUploaded || a.Key == "" {
		return
	}
	if err := s.store.Delete(ctx, a.Key); err != nil {
		slog.Warn("failed to release attachment", "key", a.Key, "error", err)
	}
}
