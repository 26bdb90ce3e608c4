// Package store implements the Datastore: a thread-safe mapping from a
// byte-string key to a single typed value (string, list, or hash), with
// type-checked accessors. See DESIGN.md for the grounding of each method.
package store

import (
	"container/list"
	"errors"
	"sync"
)

// ErrWrongType is returned when a command addresses a key holding a value
// of a different variant than the one the command operates on.
var ErrWrongType = errors.New("wrong kind of value")

// ErrIndexOutOfRange is returned by ListIndex when the requested index does
// not select any element of the list.
var ErrIndexOutOfRange = errors.New("index out of range")

type kind int

const (
	kindString kind = iota
	kindList
	kindHash
)

type entry struct {
	kind kind
	str  []byte
	list *list.List        // element values are []byte
	hash map[string][]byte
}

// Store is the process-wide key-value datastore. A single mutex guards all
// state; every exported method runs to completion inside it, giving each
// call single-statement atomicity with respect to other callers (spec.md
// §5). Command handlers in internal/command hold no lock of their own — the
// Store is the only synchronization point.
type Store struct {
	mu   sync.Mutex
	data map[string]*entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: make(map[string]*entry)}
}

// Get reads the string value at key. ok is false if the key is absent.
func (s *Store) Get(key string) (val []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.data[key]
	if !found {
		return nil, false, nil
	}
	if e.kind != kindString {
		return nil, false, ErrWrongType
	}
	return e.str, true, nil
}

// Set overwrites any prior value at key (of any variant) with a string.
func (s *Store) Set(key string, val []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = &entry{kind: kindString, str: val}
}

// ListHeadPush prepends each of vals, in order, to the list at key —
// creating the list if key is absent. Each value is inserted at the head in
// turn, so the last element of vals ends up at index 0. Returns the number
// of elements pushed.
func (s *Store) ListHeadPush(key string, vals [][]byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.data[key]
	if !found {
		e = &entry{kind: kindList, list: list.New()}
		s.data[key] = e
	} else if e.kind != kindList {
		return 0, ErrWrongType
	}

	for _, v := range vals {
		e.list.PushFront(v)
	}
	return len(vals), nil
}

// ListHeadPop removes and returns the head element of the list at key. If
// the pop empties the list, key becomes absent. ok is false if key is
// absent to begin with.
func (s *Store) ListHeadPop(key string) (val []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.data[key]
	if !found {
		return nil, false, nil
	}
	if e.kind != kindList {
		return nil, false, ErrWrongType
	}

	front := e.list.Front()
	v := e.list.Remove(front).([]byte)
	if e.list.Len() == 0 {
		delete(s.data, key)
	}
	return v, true, nil
}

// ListLen returns the length of the list at key, or 0 if key is absent.
func (s *Store) ListLen(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.data[key]
	if !found {
		return 0, nil
	}
	if e.kind != kindList {
		return 0, ErrWrongType
	}
	return e.list.Len(), nil
}

// ListIndex returns the element at position i of the list at key. Negative i
// counts from the tail: for a list of length L, i selects position i when
// 0 <= i < L, and position L+i when -L <= i < 0. Any other i is
// ErrIndexOutOfRange. ok is false if key is absent.
func (s *Store) ListIndex(key string, i int) (val []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.data[key]
	if !found {
		return nil, false, nil
	}
	if e.kind != kindList {
		return nil, false, ErrWrongType
	}

	length := e.list.Len()
	pos := i
	if pos < 0 {
		pos = length + i
	}
	if pos < 0 || pos >= length {
		return nil, false, ErrIndexOutOfRange
	}

	elem := e.list.Front()
	for n := 0; n < pos; n++ {
		elem = elem.Next()
	}
	return elem.Value.([]byte), true, nil
}

// HashSet sets field to val in the hash at key, creating an empty hash first
// if key is absent. Returns true if the field was newly created, false if it
// already existed and was overwritten.
func (s *Store) HashSet(key, field string, val []byte) (isNew bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.data[key]
	if !found {
		e = &entry{kind: kindHash, hash: make(map[string][]byte)}
		s.data[key] = e
	} else if e.kind != kindHash {
		return false, ErrWrongType
	}

	_, existed := e.hash[field]
	e.hash[field] = val
	return !existed, nil
}

// HashGet reads field from the hash at key. ok is false if the key or the
// field is absent.
func (s *Store) HashGet(key, field string) (val []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.data[key]
	if !found {
		return nil, false, nil
	}
	if e.kind != kindHash {
		return nil, false, ErrWrongType
	}

	v, ok := e.hash[field]
	return v, ok, nil
}
