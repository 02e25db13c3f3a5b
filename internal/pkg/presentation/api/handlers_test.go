package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/matryer/is"

	"github.com/velosovictor/frontblok-crud/internal/pkg/application/entitystore"
	"github.com/velosovictor/frontblok-crud/pkg/crud"
	"github.com/velosovictor/frontblok-crud/pkg/schema"
)

func TestCreateEntity(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "POST", "/api/tasks/", bytes.NewBufferString(taskJSON))

	is.Equal(resp.StatusCode, http.StatusCreated) // Check status code

	record, err := crud.NewRecordFromJSON([]byte(body))
	is.NoErr(err)
	is.True(record.ID() != "")
	is.Equal(resp.Header.Get("Location"), "/api/tasks/"+record.ID())
}

func TestCreateEntityWithWrongContentTypeReturnsUnsupportedMediaType(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	req, _ := http.NewRequest("POST", ts.URL+"/api/tasks/", bytes.NewBufferString(taskJSON))
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err) // http request failed
	defer resp.Body.Close()

	is.Equal(resp.StatusCode, http.StatusUnsupportedMediaType) // Check status code
}

func TestCreateEntityWithBadDataReturnsInvalidRequest(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, "POST", "/api/tasks/", bytes.NewBufferString("this is not my json"))

	is.Equal(resp.StatusCode, http.StatusBadRequest) // Check status code
}

func TestCreateEntityWithUnknownFieldReturnsBadRequest(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, "POST", "/api/tasks/", bytes.NewBufferString(`{"title":"paint the fence","color":"red"}`))

	is.Equal(resp.StatusCode, http.StatusBadRequest) // Check status code
}

func TestCreateEntityIgnoresServerOwnedFields(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "POST", "/api/tasks/", bytes.NewBufferString(`{"id":"spoofed","title":"paint the fence"}`))

	is.Equal(resp.StatusCode, http.StatusCreated) // Check status code

	record, err := crud.NewRecordFromJSON([]byte(body))
	is.NoErr(err)
	is.True(record.ID() != "spoofed") // the backend assigns ids, not the caller
}

func TestCreateEntityOfUnknownTypeReturnsNotFound(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, "POST", "/api/gadgets/", bytes.NewBufferString(`{"title":"whatever"}`))

	is.Equal(resp.StatusCode, http.StatusNotFound) // Check status code
}

func TestRetrieveEntity(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	entityID := createTask(is, ts, taskJSON)

	resp, body := newTestRequest(is, ts, "GET", "/api/tasks/"+entityID, nil)

	is.Equal(resp.StatusCode, http.StatusOK) // Check status code
	is.Equal(resp.Header.Get("Content-Type"), "application/json")

	record, err := crud.NewRecordFromJSON([]byte(body))
	is.NoErr(err)

	title, _ := record.Value("title")
	is.Equal(title, "paint the fence")

	status, _ := record.Value("status")
	is.Equal(status, "todo") // the schema default is applied on create
}

func TestRetrieveUnknownEntityReturnsNotFound(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "GET", "/api/tasks/b81495a9-b136-4b49-85af-3d5a0fafebe9", nil)

	is.Equal(resp.StatusCode, http.StatusNotFound) // Check status code
	is.True(strings.Contains(body, "b81495a9-b136-4b49-85af-3d5a0fafebe9"))
}

func TestUpdateEntity(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	entityID := createTask(is, ts, taskJSON)

	resp, body := newTestRequest(is, ts, "PATCH", "/api/tasks/"+entityID, bytes.NewBufferString(`{"status":"done"}`))

	is.Equal(resp.StatusCode, http.StatusOK) // Check status code

	record, err := crud.NewRecordFromJSON([]byte(body))
	is.NoErr(err)

	status, _ := record.Value("status")
	is.Equal(status, "done")

	title, _ := record.Value("title")
	is.Equal(title, "paint the fence") // untouched fields survive a patch
}

func TestUpdateEntityWithValueOutsideTheEnumReturnsBadRequest(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	entityID := createTask(is, ts, taskJSON)

	resp, _ := newTestRequest(is, ts, "PATCH", "/api/tasks/"+entityID, bytes.NewBufferString(`{"status":"paused"}`))

	is.Equal(resp.StatusCode, http.StatusBadRequest) // Check status code
}

func TestDeleteEntity(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	entityID := createTask(is, ts, taskJSON)

	resp, _ := newTestRequest(is, ts, "DELETE", "/api/tasks/"+entityID, nil)
	is.Equal(resp.StatusCode, http.StatusNoContent) // Check status code

	resp, _ = newTestRequest(is, ts, "GET", "/api/tasks/"+entityID, nil)
	is.Equal(resp.StatusCode, http.StatusNotFound) // the record is gone
}

func TestListEntities(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	createTask(is, ts, `{"title":"paint the fence"}`)
	createTask(is, ts, `{"title":"wax the car"}`)

	resp, body := newTestRequest(is, ts, "GET", "/api/tasks/", nil)

	is.Equal(resp.StatusCode, http.StatusOK) // Check status code

	records, err := crud.NewRecordSliceFromJSON([]byte(body))
	is.NoErr(err)
	is.Equal(len(records), 2)
}

func TestListEntitiesFiltersOnFieldValues(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	createTask(is, ts, `{"title":"paint the fence","status":"done"}`)
	createTask(is, ts, `{"title":"wax the car"}`)

	resp, body := newTestRequest(is, ts, "GET", "/api/tasks/?status=done", nil)

	is.Equal(resp.StatusCode, http.StatusOK) // Check status code

	records, err := crud.NewRecordSliceFromJSON([]byte(body))
	is.NoErr(err)
	is.Equal(len(records), 1)

	title, _ := records[0].Value("title")
	is.Equal(title, "paint the fence")
}

func TestListEntitiesRejectsANegativeLimit(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, "GET", "/api/tasks/?limit=-1", nil)

	is.Equal(resp.StatusCode, http.StatusBadRequest) // Check status code
}

func TestListEntityTypes(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "GET", "/api/", nil)

	is.Equal(resp.StatusCode, http.StatusOK) // Check status code
	is.Equal(body, `{"entities":["project","task"]}`)
}

func TestCreateEntityCanHandleInternalError(t *testing.T) {
	is := is.New(t)
	r := chi.NewRouter()
	r.Post("/api/{entityName}/", NewCreateEntityHandler(&failingCreator{}))
	ts := httptest.NewServer(r)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, "POST", "/api/tasks/", bytes.NewBufferString(taskJSON))

	is.Equal(resp.StatusCode, http.StatusInternalServerError) // Check status code
}

type failingCreator struct{}

func (f *failingCreator) CreateEntity(context.Context, string, map[string]any) (crud.Record, error) {
	return crud.Record{}, fmt.Errorf("something went sideways")
}

func createTask(is *is.I, ts *httptest.Server, payload string) string {
	resp, body := newTestRequest(is, ts, "POST", "/api/tasks/", bytes.NewBufferString(payload))
	is.Equal(resp.StatusCode, http.StatusCreated) // failed to seed a task

	record, err := crud.NewRecordFromJSON([]byte(body))
	is.NoErr(err)

	return record.ID()
}

func newTestRequest(is *is.I, ts *httptest.Server, method, path string, body io.Reader) (*http.Response, string) {
	req, _ := http.NewRequest(method, ts.URL+path, body)
	req.Header.Add("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err) // http request failed
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	is.NoErr(err) // failed to read response body

	return resp, string(respBody)
}

func setupTest(t *testing.T) (*is.I, *httptest.Server) {
	is := is.New(t)
	ctx := context.Background()

	cfg, err := schema.LoadConfiguration(strings.NewReader(handlersSchema))
	is.NoErr(err)

	app, err := entitystore.New(ctx, cfg)
	is.NoErr(err)

	r := chi.NewRouter()
	err = RegisterHandlers(ctx, r, app)
	is.NoErr(err)

	return is, httptest.NewServer(r)
}

const taskJSON string = `{
	"title": "paint the fence",
	"points": 3
}`

const handlersSchema string = `
entities:
  - name: project
    fields:
      title:
        type: string
        required: true
  - name: task
    fields:
      title:
        type: string
        required: true
      status:
        type: string
        enum: [todo, doing, done]
        default: todo
      points:
        type: integer
      project_id:
        type: uuid
        references: project
`
