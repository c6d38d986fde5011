package primitives

import "sort"

// AdviceMap maps words to element sequences supplied to the verifier at execution.
type AdviceMap struct {
	entries map[Word][]Felt
}

func NewAdviceMap() *AdviceMap {
	return &AdviceMap{entries: make(map[Word][]Felt)}
}

// Insert stores value under key, replacing any previous value.
func (m *AdviceMap) Insert(key Word, value []Felt) {
	m.entries[key] = append([]Felt(nil), value...)
}

func (m *AdviceMap) Get(key Word) ([]Felt, bool) {
	v, ok := m.entries[key]
	return v, ok
}

func (m *AdviceMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Keys returns keys ordered by their hex form.
func (m *AdviceMap) Keys() []Word {
	if m == nil {
		return nil
	}
	keys := make([]Word, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Hex() < keys[j].Hex()
	})
	return keys
}

// Extend copies all entries of other into m.
func (m *AdviceMap) Extend(other *AdviceMap) {
	if other == nil {
		return
	}
	for k, v := range other.entries {
		m.Insert(k, v)
	}
}
