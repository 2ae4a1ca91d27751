// Package indexmap implements IndexMap, an insertion-ordered map that
// additionally supports O(1) amortized lookup by positional index. It
// backs every named resource table in the world format (materials,
// sectors, cog scripts, things, ...) where callers need both "the entry
// named X" and "the Nth entry" with N stable across unrelated edits.
package indexmap

import "strings"

// entry is one node of the backing doubly linked list.
type entry[K comparable, V any] struct {
	key  K
	val  V
	prev *entry[K, V]
	next *entry[K, V]
}

// normKey lets string keys compare case-insensitively while every other
// comparable key type is compared as-is.
func normKey[K comparable](k K) any {
	if s, ok := any(k).(string); ok {
		return strings.ToLower(s)
	}
	return k
}

// IndexMap is an ordered, keyed collection. Iteration order is insertion
// order; erasing an element shifts every later element's index down by one.
// String keys are matched case-insensitively.
type IndexMap[K comparable, V any] struct {
	list     *entry[K, V]
	tail     *entry[K, V]
	byKey    map[any]*entry[K, V]
	byIdx    []*entry[K, V]
}

// New returns an empty IndexMap.
func New[K comparable, V any]() *IndexMap[K, V] {
	return &IndexMap[K, V]{byKey: make(map[any]*entry[K, V])}
}

// Len returns the number of elements in the map.
func (m *IndexMap[K, V]) Len() int {
	return len(m.byIdx)
}

// IsEmpty reports whether the map has no elements.
func (m *IndexMap[K, V]) IsEmpty() bool {
	return len(m.byIdx) == 0
}

// Contains reports whether key is present.
func (m *IndexMap[K, V]) Contains(key K) bool {
	_, ok := m.byKey[normKey(key)]
	return ok
}

// At returns the value at the given zero-based index.
func (m *IndexMap[K, V]) At(idx int) (V, bool) {
	var zero V
	if idx < 0 || idx >= len(m.byIdx) {
		return zero, false
	}
	return m.byIdx[idx].val, true
}

// Get returns the value for key.
func (m *IndexMap[K, V]) Get(key K) (V, bool) {
	var zero V
	e, ok := m.byKey[normKey(key)]
	if !ok {
		return zero, false
	}
	return e.val, true
}

// IndexOf returns the positional index of key, or -1 if absent.
func (m *IndexMap[K, V]) IndexOf(key K) int {
	e, ok := m.byKey[normKey(key)]
	if !ok {
		return -1
	}
	for i, v := range m.byIdx {
		if v == e {
			return i
		}
	}
	return -1
}

// PushBack inserts (key, val) at the end. It returns the index of the
// element and false if key already existed (in which case nothing changes).
func (m *IndexMap[K, V]) PushBack(key K, val V) (int, bool) {
	return m.Insert(len(m.byIdx), key, val)
}

// PushFront inserts (key, val) at the beginning.
func (m *IndexMap[K, V]) PushFront(key K, val V) (int, bool) {
	return m.Insert(0, key, val)
}

// Insert places (key, val) at position pos, clamped to [0, size]. If key
// already exists, the map is unchanged and the existing index is returned
// along with false.
func (m *IndexMap[K, V]) Insert(pos int, key K, val V) (int, bool) {
	nk := normKey(key)
	if e, ok := m.byKey[nk]; ok {
		for i, v := range m.byIdx {
			if v == e {
				return i, false
			}
		}
	}

	if pos < 0 {
		pos = 0
	} else if pos > len(m.byIdx) {
		pos = len(m.byIdx)
	}

	e := &entry[K, V]{key: key, val: val}
	if m.list == nil {
		m.list = e
		m.tail = e
	} else if pos == len(m.byIdx) {
		e.prev = m.tail
		m.tail.next = e
		m.tail = e
	} else {
		next := m.byIdx[pos]
		e.next = next
		e.prev = next.prev
		if next.prev != nil {
			next.prev.next = e
		} else {
			m.list = e
		}
		next.prev = e
	}

	m.byKey[nk] = e
	m.byIdx = append(m.byIdx, nil)
	copy(m.byIdx[pos+1:], m.byIdx[pos:])
	m.byIdx[pos] = e
	return pos, true
}

// Set replaces the value at an existing key, or inserts it at the end if
// absent. It returns the element's index.
func (m *IndexMap[K, V]) Set(key K, val V) int {
	nk := normKey(key)
	if e, ok := m.byKey[nk]; ok {
		e.val = val
		for i, v := range m.byIdx {
			if v == e {
				return i
			}
		}
	}
	idx, _ := m.PushBack(key, val)
	return idx
}

// EraseIndex removes the element at idx, shifting later indices down by one.
func (m *IndexMap[K, V]) EraseIndex(idx int) {
	if idx < 0 || idx >= len(m.byIdx) {
		return
	}
	e := m.byIdx[idx]
	m.unlink(e)
	m.byIdx = append(m.byIdx[:idx], m.byIdx[idx+1:]...)
	delete(m.byKey, normKey(e.key))
}

// EraseKey removes the element under key, if present.
func (m *IndexMap[K, V]) EraseKey(key K) {
	nk := normKey(key)
	e, ok := m.byKey[nk]
	if !ok {
		return
	}
	for i, v := range m.byIdx {
		if v == e {
			m.byIdx = append(m.byIdx[:i], m.byIdx[i+1:]...)
			break
		}
	}
	m.unlink(e)
	delete(m.byKey, nk)
}

func (m *IndexMap[K, V]) unlink(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		m.list = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		m.tail = e.prev
	}
}

// Clear empties the map.
func (m *IndexMap[K, V]) Clear() {
	m.list = nil
	m.tail = nil
	m.byKey = make(map[any]*entry[K, V])
	m.byIdx = nil
}

// Keys returns the keys in insertion order.
func (m *IndexMap[K, V]) Keys() []K {
	keys := make([]K, 0, len(m.byIdx))
	for _, e := range m.byIdx {
		keys = append(keys, e.key)
	}
	return keys
}

// Each iterates the map in insertion order, stopping early if fn returns false.
func (m *IndexMap[K, V]) Each(fn func(idx int, key K, val V) bool) {
	for i, e := range m.byIdx {
		if !fn(i, e.key, e.val) {
			return
		}
	}
}

// Clone performs a shallow copy: keys and values are copied by assignment,
// and the clone's ordering/index structures are reconstructed independently
// so that erasing from one map never disturbs the other.
func (m *IndexMap[K, V]) Clone() *IndexMap[K, V] {
	clone := New[K, V]()
	m.Each(func(_ int, k K, v V) bool {
		clone.PushBack(k, v)
		return true
	})
	return clone
}
