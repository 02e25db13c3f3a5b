// Package crud defines the shared data model for the generic entity API:
// records, write payloads and query options. The model is schema free on
// purpose. An entity name is an opaque string and a record is a flat set of
// named fields, so one client can operate against any entity the backing
// service knows about.
package crud

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Reserved header fields present on every stored record. The server is the
// sole authority for all three: write payloads never include them.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

func isReserved(name string) bool {
	return name == FieldID || name == FieldCreatedAt || name == FieldUpdatedAt
}

// Record is a single entity instance as it travels over the wire: the three
// reserved header fields plus any number of entity specific fields, all
// flattened into one JSON object. Records are immutable once created; the
// With and Merge helpers return replacements.
type Record struct {
	id        string
	createdAt string
	updatedAt string
	fields    map[string]any
}

// NewRecord creates a record from an id and a set of entity fields. Reserved
// header fields in the map are dropped.
func NewRecord(id string, fields map[string]any) Record {
	r := Record{id: id, fields: map[string]any{}}
	for k, v := range fields {
		if isReserved(k) {
			continue
		}
		r.fields[k] = v
	}
	return r
}

// NewRecordFromJSON decodes a single record object.
func NewRecordFromJSON(body []byte) (Record, error) {
	r := &Record{}
	err := json.Unmarshal(body, r)
	if err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return *r, nil
}

// NewRecordSliceFromJSON decodes a JSON array of record objects.
func NewRecordSliceFromJSON(body []byte) ([]Record, error) {
	records := []Record{}
	err := json.Unmarshal(body, &records)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}

	return records, nil
}

func (r Record) ID() string        { return r.id }
func (r Record) CreatedAt() string { return r.createdAt }
func (r Record) UpdatedAt() string { return r.updatedAt }

// Value returns the named entity field and whether it is present.
func (r Record) Value(name string) (any, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// FieldNames returns the entity field names in sorted order.
func (r Record) FieldNames() []string {
	names := make([]string, 0, len(r.fields))
	for k := range r.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Fields returns a copy of the entity fields, reserved header excluded.
func (r Record) Fields() map[string]any {
	fields := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		fields[k] = v
	}
	return fields
}

func (r Record) clone() Record {
	return Record{id: r.id, createdAt: r.createdAt, updatedAt: r.updatedAt, fields: r.Fields()}
}

// WithTimestamps returns a copy of the record with both server timestamps set.
func (r Record) WithTimestamps(createdAt, updatedAt string) Record {
	out := r.clone()
	out.createdAt = createdAt
	out.updatedAt = updatedAt
	return out
}

// Merge returns a copy of the record with the given fields laid over the
// existing ones (partial update semantics). Reserved fields are ignored.
func (r Record) Merge(fields map[string]any) Record {
	out := r.clone()
	for k, v := range fields {
		if isReserved(k) {
			continue
		}
		out.fields[k] = v
	}
	return out
}

func (r Record) MarshalJSON() ([]byte, error) {
	contents := map[string]any{}

	for k, v := range r.fields {
		contents[k] = v
	}

	if r.id != "" {
		contents[FieldID] = r.id
	}
	if r.createdAt != "" {
		contents[FieldCreatedAt] = r.createdAt
	}
	if r.updatedAt != "" {
		contents[FieldUpdatedAt] = r.updatedAt
	}

	return json.Marshal(&contents)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var contents map[string]any
	err := json.Unmarshal(data, &contents)
	if err != nil {
		return fmt.Errorf("failed to unmarshal record: %w", err)
	}

	header := struct {
		ID        string `json:"id"`
		CreatedAt string `json:"created_at"`
		UpdatedAt string `json:"updated_at"`
	}{}

	err = json.Unmarshal(data, &header)
	if err != nil {
		return fmt.Errorf("failed to unmarshal record header: %w", err)
	}

	// Delete the fields we have already dealt with
	delete(contents, FieldID)
	delete(contents, FieldCreatedAt)
	delete(contents, FieldUpdatedAt)

	r.id = header.ID
	r.createdAt = header.CreatedAt
	r.updatedAt = header.UpdatedAt
	r.fields = contents

	if r.fields == nil {
		r.fields = map[string]any{}
	}

	return nil
}
