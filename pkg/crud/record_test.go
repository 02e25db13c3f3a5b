package crud

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestNewRecordFromJSON(t *testing.T) {
	is := is.New(t)

	r, err := NewRecordFromJSON([]byte(`{"id":"r-1","created_at":"2024-05-01T10:00:00Z","updated_at":"2024-05-02T10:00:00Z","title":"write docs","done":false}`))
	is.NoErr(err)

	is.Equal(r.ID(), "r-1")
	is.Equal(r.CreatedAt(), "2024-05-01T10:00:00Z")
	is.Equal(r.UpdatedAt(), "2024-05-02T10:00:00Z")

	title, ok := r.Value("title")
	is.True(ok)
	is.Equal(title, "write docs")

	_, ok = r.Value("id") // header fields are not entity fields
	is.True(!ok)
}

func TestNewRecordFromJSONWithoutHeader(t *testing.T) {
	is := is.New(t)

	r, err := NewRecordFromJSON([]byte(`{"title":"draft"}`))
	is.NoErr(err)

	is.Equal(r.ID(), "") // header fields may be absent before creation
	is.Equal(r.CreatedAt(), "")
}

func TestNewRecordFromJSONRejectsNonStringID(t *testing.T) {
	is := is.New(t)

	_, err := NewRecordFromJSON([]byte(`{"id":42,"title":"draft"}`))
	is.True(err != nil) // ids are opaque strings on the wire
}

func TestNewRecordSliceFromJSON(t *testing.T) {
	is := is.New(t)

	records, err := NewRecordSliceFromJSON([]byte(`[{"id":"a","title":"one"},{"id":"b","title":"two"}]`))
	is.NoErr(err)

	is.Equal(len(records), 2)
	is.Equal(records[0].ID(), "a")
	is.Equal(records[1].ID(), "b")
}

func TestRecordMarshalFlattensHeaderAndFields(t *testing.T) {
	is := is.New(t)

	r := NewRecord("r-2", map[string]any{"title": "x", "count": 3}).
		WithTimestamps("2024-05-01T10:00:00Z", "2024-05-01T10:00:00Z")

	body, err := json.Marshal(r)
	is.NoErr(err)

	var decoded map[string]any
	is.NoErr(json.Unmarshal(body, &decoded))

	is.Equal(decoded["id"], "r-2")
	is.Equal(decoded["created_at"], "2024-05-01T10:00:00Z")
	is.Equal(decoded["title"], "x")
	is.Equal(decoded["count"], float64(3))
}

func TestRecordMarshalOmitsEmptyHeader(t *testing.T) {
	is := is.New(t)

	body, err := json.Marshal(NewRecord("", map[string]any{"title": "x"}))
	is.NoErr(err)

	var decoded map[string]any
	is.NoErr(json.Unmarshal(body, &decoded))

	_, hasID := decoded["id"]
	is.True(!hasID) // unset header fields must not serialize as ""
}

func TestNewRecordDropsReservedFields(t *testing.T) {
	is := is.New(t)

	r := NewRecord("r-3", map[string]any{"id": "spoofed", "created_at": "then", "title": "x"})

	is.Equal(r.ID(), "r-3")
	is.Equal(r.CreatedAt(), "")

	_, ok := r.Value("created_at")
	is.True(!ok)
}

func TestRecordMerge(t *testing.T) {
	is := is.New(t)

	r := NewRecord("r-4", map[string]any{"title": "before", "done": false}).
		WithTimestamps("t0", "t0")

	merged := r.Merge(map[string]any{"done": true, "id": "spoofed"})

	done, _ := merged.Value("done")
	is.Equal(done, true)

	title, _ := merged.Value("title")
	is.Equal(title, "before") // untouched fields survive a partial update

	is.Equal(merged.ID(), "r-4")

	old, _ := r.Value("done")
	is.Equal(old, false) // the original record is not mutated
}

func TestRecordFieldNamesAreSorted(t *testing.T) {
	is := is.New(t)

	r := NewRecord("r-5", map[string]any{"zeta": 1, "alpha": 2, "mid": 3})
	is.Equal(r.FieldNames(), []string{"alpha", "mid", "zeta"})
}

func TestPayloadSanitized(t *testing.T) {
	is := is.New(t)

	p := Payload{"title": "x", "id": "nope", "updated_at": "nope"}
	s := p.Sanitized()

	is.Equal(len(s), 1)
	is.Equal(s["title"], "x")
	is.Equal(p["id"], "nope") // input payload left untouched
}
