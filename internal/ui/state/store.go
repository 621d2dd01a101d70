// Package state holds the editable document for a composition session.
package state

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
)

var (
	// ErrIndexOutOfRange reports an update or removal addressed past the end of a collection.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrUnknownCollection reports a collection name the document does not hold.
	ErrUnknownCollection = errors.New("unknown collection")
)

// IndexError carries the collection and bounds for an ErrIndexOutOfRange failure.
type IndexError struct {
	Collection string
	Index      int
	Len        int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s[%d]: index out of range (len %d)", e.Collection, e.Index, e.Len)
}

// Is lets errors.Is match ErrIndexOutOfRange.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// Store maintains the in-memory document and tracks which collections need re-rendering.
type Store struct {
	mu       sync.RWMutex
	doc      model.Document
	dirty    map[string]bool
	revision uint64
}

// NewStore constructs a store holding an empty document of the given type.
func NewStore(emailType string) *Store {
	s := &Store{dirty: make(map[string]bool)}
	s.Reset(emailType)
	return s
}

// Reset discards the document and starts an empty one for emailType.
func (s *Store) Reset(emailType string) {
	s.Replace(model.NewDocument(emailType))
}

// Replace swaps the entire working document. Every view is invalidated.
func (s *Store) Replace(doc model.Document) {
	doc = doc.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	for _, name := range model.AllCollections {
		s.dirty[name] = true
	}
	s.dirty[ScalarsView] = true
	s.revision++
}

// ScalarsView is the dirty key for the weather and cover fields.
const ScalarsView = "scalars"

// Insert appends item to the collection. An order below 1 is treated as unset and
// defaults to count+1. Insertion never re-sorts.
func (s *Store) Insert(collection string, item model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := s.doc.Collection(collection)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	item = item.Clone()
	if item.Fields == nil {
		item.Fields = make(map[string]string)
	}
	if item.Order < 1 {
		item.Order = len(*items) + 1
	}
	*items = append(*items, item)
	s.touch(collection)
	return nil
}

// Update merges patch into the item at index. When the order changes the collection
// is re-sorted ascending by order; ties keep their prior relative position.
func (s *Store) Update(collection string, index int, patch model.ItemPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.lookup(collection, index)
	if err != nil {
		return err
	}
	updated, orderChanged := patch.Apply((*items)[index])
	(*items)[index] = updated
	if orderChanged {
		SortByOrder(*items)
	}
	s.touch(collection)
	return nil
}

// Remove deletes the item at index. Confirmation belongs to the caller.
func (s *Store) Remove(collection string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.lookup(collection, index)
	if err != nil {
		return err
	}
	*items = append((*items)[:index], (*items)[index+1:]...)
	s.touch(collection)
	return nil
}

// SetCollection replaces one collection wholesale, e.g. after loading saved adverts.
func (s *Store) SetCollection(collection string, items []model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dst, ok := s.doc.Collection(collection)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	*dst = model.CloneItems(items)
	s.touch(collection)
	return nil
}

// SetWeather replaces the weather block.
func (s *Store) SetWeather(w model.Weather) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Weather = w
	s.touch(ScalarsView)
}

// Snapshot returns a copy of the named collection. Callers may modify it freely.
func (s *Store) Snapshot(collection string) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.doc.Collection(collection)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return model.CloneItems(*items), nil
}

// Len returns the number of items in the collection, or 0 for unknown names.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.doc.Collection(collection)
	if !ok {
		return 0
	}
	return len(*items)
}

// Document returns a deep copy of the working document.
func (s *Store) Document() model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// EmailType returns the type tag of the working document.
func (s *Store) EmailType() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.EmailType
}

// Revision increments on every mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Dirty lists the views that changed since the last TakeDirty, sorted by name.
func (s *Store) Dirty() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.dirty)
}

// TakeDirty returns and clears the dirty set.
func (s *Store) TakeDirty() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := sortedKeys(s.dirty)
	s.dirty = make(map[string]bool)
	return out
}

func (s *Store) lookup(collection string, index int) (*[]model.Item, error) {
	items, ok := s.doc.Collection(collection)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	if index < 0 || index >= len(*items) {
		return nil, &IndexError{Collection: collection, Index: index, Len: len(*items)}
	}
	return items, nil
}

func (s *Store) touch(view string) {
	s.dirty[view] = true
	s.revision++
}

// SortByOrder sorts items ascending by order, keeping the relative position of ties.
func SortByOrder(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Order < items[j].Order
	})
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
