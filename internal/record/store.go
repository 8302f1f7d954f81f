package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
)

// ErrNotFound is returned when no record carries the requested ID.
var ErrNotFound = errors.New("record not found")

// priorityPattern marks records that list before all others.
var priorityPattern = regexp.MustCompile(`(?i)bone|vertebrae|tooth`)

// Store holds the loaded dataset. Records are not modified after loading.
type Store struct {
	records []Record
}

// NewStore wraps records in a Store. The slice is owned by the store from here on.
func NewStore(records []Record) *Store {
	return &Store{records: records}
}

// Load reads a JSON array of records from path.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open dataset %s: %w", path, err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset %s: %w", path, err)
	}
	return s, nil
}

// Decode reads a JSON array of records from r.
func Decode(r io.Reader) (*Store, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	return NewStore(records), nil
}

// PrioritySort moves records whose primitive name matches the priority
// keywords ahead of the rest. Relative order is otherwise preserved.
func (s *Store) PrioritySort() {
	sort.SliceStable(s.records, func(i, j int) bool {
		return IsPriority(s.records[i]) && !IsPriority(s.records[j])
	})
}

// IsPriority reports whether r sorts into the leading group.
func IsPriority(r Record) bool {
	return priorityPattern.MatchString(r.PrimitiveName)
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// At returns the record at index i.
func (s *Store) At(i int) Record { return s.records[i] }

// Records exposes the backing slice for read-only iteration.
func (s *Store) Records() []Record { return s.records }

// FindPrimitive returns the index of the first record whose primitive ID equals id.
func (s *Store) FindPrimitive(id string) (int, error) {
	for i, r := range s.records {
		if r.PrimitiveID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrNotFound, id)
}
