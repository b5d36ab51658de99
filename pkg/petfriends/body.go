package petfriends

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Body is a decoded JSON object exactly as the service sent it. Numbers are
// kept as json.Number so their literal text survives.
type Body map[string]any

// Has reports whether key is present, regardless of its value.
func (b Body) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// String returns the value at key as text. Strings are returned unchanged,
// numbers as their literal JSON text. ok is false when the key is absent or null.
func (b Body) String(key string) (string, bool) {
	v, ok := b[key]
	if !ok {
		return "", false
	}
	return stringify(v)
}

// Key returns the auth key carried by a successful auth response.
func (b Body) Key() (AuthKey, bool) {
	s, ok := b.String("key")
	return AuthKey(s), ok
}

// Pet returns the typed view of a single-record response.
func (b Body) Pet() PetRecord {
	return recordFromMap(b)
}

// Pets returns the typed view of the "pets" collection. ok is false when the
// field is missing or is not a list.
func (b Body) Pets() ([]PetRecord, bool) {
	raw, ok := b["pets"].([]any)
	if !ok {
		return nil, false
	}
	out := make([]PetRecord, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, recordFromMap(m))
	}
	return out, true
}

// PetIDs lists the ids of the "pets" collection in order.
func (b Body) PetIDs() []string {
	pets, _ := b.Pets()
	ids := make([]string, 0, len(pets))
	for _, p := range pets {
		ids = append(ids, p.ID)
	}
	return ids
}

// ContainsPet reports whether the "pets" collection holds id.
func (b Body) ContainsPet(id string) bool {
	for _, got := range b.PetIDs() {
		if got == id {
			return true
		}
	}
	return false
}

func recordFromMap(m map[string]any) PetRecord {
	field := func(key string) string {
		s, _ := stringify(m[key])
		return s
	}
	return PetRecord{
		ID:         field("id"),
		Name:       field(fieldName),
		AnimalType: field(fieldAnimalType),
		Age:        field(fieldAge),
		PetPhoto:   field(fieldPhoto),
		UserID:     field("user_id"),
		CreatedAt:  field("created_at"),
	}
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t), true
		}
		return string(raw), true
	}
}
