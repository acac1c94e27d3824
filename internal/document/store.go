package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/metcalfc/hark/internal/storage"
)

// StorageKey is the key the whole library is stored under.
const StorageKey = "documents"

var (
	// ErrDocumentNotFound is returned when a mutation names an unknown document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrParagraphOutOfRange is returned for paragraph indices outside the content.
	ErrParagraphOutOfRange = errors.New("paragraph out of range")
	// ErrStoreClosed is returned for mutations after Close.
	ErrStoreClosed = errors.New("document store closed")
)

// Store owns the library and the id of the open document. Every mutation
// persists the full library through a single writer goroutine.
type Store struct {
	mu        sync.RWMutex
	documents []Document
	currentID string
	closed    bool

	storage storage.Storage
	writer  *writer
	logger  *slog.Logger
}

// NewStore creates an empty store backed by st. Call Load to read the
// persisted library and Close to flush pending writes.
func NewStore(st storage.Storage, logger *slog.Logger) *Store {
	return &Store{
		storage: st,
		writer:  newWriter(st, StorageKey, logger),
		logger:  logger,
	}
}

// Load replaces the in-memory library with the persisted one. On error the
// store keeps its current state.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.storage.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("failed to decode documents: %w", err)
	}
	for i := range docs {
		docs[i] = normalize(docs[i])
	}

	s.mu.Lock()
	s.documents = docs
	if _, ok := s.indexLocked(s.currentID); !ok {
		s.currentID = ""
	}
	s.mu.Unlock()

	s.logger.Info("documents loaded", "count", len(docs))
	return nil
}

// normalize repairs state written by older versions or edited by hand.
func normalize(d Document) Document {
	if d.Bookmarks == nil {
		d.Bookmarks = []int{}
	}
	d.Bookmarks = slices.DeleteFunc(slices.Compact(slices.Sorted(slices.Values(d.Bookmarks))), func(p int) bool {
		return !d.inRange(p)
	})
	if !d.inRange(d.CurrentParagraph) {
		d.CurrentParagraph = 0
	}
	return d
}

// Add appends a new document positioned at its first paragraph.
func (s *Store) Add(name string, content []string, opts ...Option) (Document, error) {
	doc := Document{
		ID:        newID(),
		Name:      name,
		Content:   slices.Clone(content),
		Bookmarks: []int{},
	}
	for _, opt := range opts {
		opt(&doc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Document{}, ErrStoreClosed
	}
	s.documents = append(s.documents, doc)
	s.persistLocked()

	s.logger.Info("document added", "id", doc.ID, "name", name, "paragraphs", len(content))
	return doc.clone(), nil
}

// List returns a copy of every document in insertion order.
func (s *Store) List() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Document, len(s.documents))
	for i, d := range s.documents {
		out[i] = d.clone()
	}
	return out
}

// Len returns the number of documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Get looks a document up by id.
func (s *Store) Get(id string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.indexLocked(id)
	if !ok {
		return Document{}, false
	}
	return s.documents[i].clone(), true
}

// FindByChecksum returns the first document imported from content with the
// given checksum.
func (s *Store) FindByChecksum(sum string) (Document, bool) {
	if sum == "" {
		return Document{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.documents {
		if d.Checksum == sum {
			return d.clone(), true
		}
	}
	return Document{}, false
}

// SetCurrent marks the document with id as open. An unknown id clears the
// open document and reports false.
func (s *Store) SetCurrent(id string) (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.indexLocked(id)
	if !ok {
		s.currentID = ""
		return Document{}, false
	}
	s.currentID = id
	return s.documents[i].clone(), true
}

// Current returns the open document, looked up fresh on every call.
func (s *Store) Current() (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.indexLocked(s.currentID)
	if !ok {
		return Document{}, false
	}
	return s.documents[i].clone(), true
}

// ClearCurrent closes the open document.
func (s *Store) ClearCurrent() {
	s.mu.Lock()
	s.currentID = ""
	s.mu.Unlock()
}

// SetCurrentParagraph moves the reading position of document id.
func (s *Store) SetCurrentParagraph(id string, paragraph int) error {
	return s.update(id, func(d *Document) error {
		if !d.inRange(paragraph) {
			return fmt.Errorf("%w: %d not in [0, %d)", ErrParagraphOutOfRange, paragraph, len(d.Content))
		}
		d.CurrentParagraph = paragraph
		return nil
	})
}

// ToggleBookmark adds paragraph to the bookmarks of document id, or removes
// it when already present. Bookmarks stay in ascending order. It reports whether the paragraph is now bookmarked.
func (s *Store) ToggleBookmark(id string, paragraph int) (bool, error) {
	var bookmarked bool
	err := s.update(id, func(d *Document) error {
		if !d.inRange(paragraph) {
			return fmt.Errorf("%w: %d not in [0, %d)", ErrParagraphOutOfRange, paragraph, len(d.Content))
		}
		i, found := slices.BinarySearch(d.Bookmarks, paragraph)
		if found {
			d.Bookmarks = slices.Delete(d.Bookmarks, i, i+1)
		} else {
			d.Bookmarks = slices.Insert(d.Bookmarks, i, paragraph)
		}
		bookmarked = !found
		return nil
	})
	return bookmarked, err
}

func (s *Store) update(id string, fn func(*Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	i, ok := s.indexLocked(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}

	doc := s.documents[i].clone()
	if err := fn(&doc); err != nil {
		return err
	}
	s.documents[i] = doc
	s.persistLocked()
	return nil
}

func (s *Store) indexLocked(id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	i := slices.IndexFunc(s.documents, func(d Document) bool { return d.ID == id })
	return i, i >= 0
}

func (s *Store) persistLocked() {
	data, err := json.Marshal(s.documents)
	if err != nil {
		s.logger.Error("failed to encode documents", "error", err)
		return
	}
	s.writer.enqueue(data)
}

// Close flushes pending writes. The store rejects mutations afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.writer.close()
	return nil
}
