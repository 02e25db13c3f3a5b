package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

var ErrRequestFailed = fmt.Errorf("request failed")
var ErrNotInitialized = fmt.Errorf("not initialized")
var ErrInvalidOperation = fmt.Errorf("invalid operation")
var ErrNotFound = fmt.Errorf("not found")
var ErrBadRequest = fmt.Errorf("bad request")
var ErrInvalidRequest = fmt.Errorf("invalid request")
var ErrInternal = fmt.Errorf("internal error")

type myError struct {
	msg    string
	target error
}

func (m myError) Error() string        { return m.msg }
func (m myError) Is(target error) bool { return target == m.target }

// NewRequestFailedError wraps a transport or non-2xx failure. The message is
// forwarded from the failing layer, never reinterpreted.
func NewRequestFailedError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrRequestFailed,
	}
}

// NewNotInitializedError signals use of the default client before Init. This
// is a programmer error and should abort application wiring.
func NewNotInitializedError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrNotInitialized,
	}
}

// NewInvalidOperationError signals caller misuse, such as removing an entity
// from a form that has no id bound.
func NewInvalidOperationError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrInvalidOperation,
	}
}

func NewNotFoundError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrNotFound,
	}
}

func NewBadRequestError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrBadRequest,
	}
}

func NewInvalidRequestError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrInvalidRequest,
	}
}

// Normalize coerces any recovered value into an error so that failure state
// always carries a message. Errors pass through unchanged, nil stays nil.
func Normalize(v any) error {
	switch e := v.(type) {
	case nil:
		return nil
	case error:
		return e
	case string:
		return &myError{msg: e, target: ErrInternal}
	default:
		return &myError{msg: fmt.Sprintf("%v", e), target: ErrInternal}
	}
}

// NewErrorFromProblemReport turns a non-2xx response into a client error. All
// failures surface as ErrRequestFailed regardless of status code, with the
// problem detail preserved as the message. Responses without a parseable
// problem report fall back to the status text plus a body excerpt.
func NewErrorFromProblemReport(code int, contentType string, body []byte) error {
	if strings.HasPrefix(contentType, ProblemReportContentType) {
		report := &struct {
			Type   string `json:"type"`
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}{}

		err := json.Unmarshal(body, report)
		if err == nil && report.Detail != "" {
			return NewRequestFailedError(report.Detail)
		}
		if err == nil && report.Title != "" {
			return NewRequestFailedError(report.Title)
		}
	}

	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > 256 {
		excerpt = excerpt[:256]
	}

	if excerpt == "" {
		return NewRequestFailedError(fmt.Sprintf("%d %s", code, http.StatusText(code)))
	}

	return NewRequestFailedError(fmt.Sprintf("%d %s: %s", code, http.StatusText(code), excerpt))
}

//ProblemDetails stores details about a certain problem according to RFC7807
//See https://tools.ietf.org/html/rfc7807
type ProblemDetails interface {
	ContentType() string
	Type() string
	Title() string
	Detail() string
	MarshalJSON() ([]byte, error)
	WriteResponse(w http.ResponseWriter)
}

//ProblemDetailsImpl is an implementation of the ProblemDetails interface
type ProblemDetailsImpl struct {
	typ     string
	title   string
	detail  string
	code    int
	traceID string
}

const (
	//ProblemReportContentType as required by https://tools.ietf.org/html/rfc7807
	ProblemReportContentType string = "application/problem+json"
)

//BadRequest reports that the request includes input data which does not meet the requirements of the operation
type BadRequest struct {
	ProblemDetailsImpl
}

//NewBadRequest creates and returns a new instance of a BadRequest with the supplied problem detail
func NewBadRequest(detail, traceID string) *BadRequest {
	return &BadRequest{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     "https://frontblok.dev/errors/BadRequest",
			title:   "Bad Request",
			detail:  detail,
			code:    http.StatusBadRequest,
			traceID: traceID,
		},
	}
}

//ReportBadRequest creates a BadRequest instance and sends it to the supplied http.ResponseWriter
func ReportBadRequest(w http.ResponseWriter, detail, traceID string) {
	br := NewBadRequest(detail, traceID)
	br.WriteResponse(w)
}

//InvalidRequest reports that the request associated to the operation is syntactically
//invalid or includes wrong content
type InvalidRequest struct {
	ProblemDetailsImpl
}

//NewInvalidRequest creates and returns a new instance of an InvalidRequest with the supplied problem detail
func NewInvalidRequest(detail, traceID string) *InvalidRequest {
	return &InvalidRequest{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     "https://frontblok.dev/errors/InvalidRequest",
			title:   "Invalid Request",
			detail:  detail,
			code:    http.StatusBadRequest,
			traceID: traceID,
		},
	}
}

//ReportInvalidRequest creates an InvalidRequest instance and sends it to the supplied http.ResponseWriter
func ReportInvalidRequest(w http.ResponseWriter, detail, traceID string) {
	ir := NewInvalidRequest(detail, traceID)
	ir.WriteResponse(w)
}

//InternalError reports that there has been an error during the operation execution
type InternalError struct {
	ProblemDetailsImpl
}

func (ie InternalError) Error() string {
	return ie.detail
}

//NewInternalError creates and returns a new instance of an InternalError with the supplied problem detail
func NewInternalError(detail, traceID string) *InternalError {
	return &InternalError{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     "https://frontblok.dev/errors/InternalError",
			title:   "Internal Error",
			detail:  detail,
			code:    http.StatusInternalServerError,
			traceID: traceID,
		},
	}
}

//ReportInternalError creates an InternalError instance and sends it to the supplied http.ResponseWriter
func ReportInternalError(w http.ResponseWriter, detail, traceID string) {
	ie := NewInternalError(detail, traceID)
	ie.WriteResponse(w)
}

//NotFound reports that the request failed with a not found error of some kind
type NotFound struct {
	ProblemDetailsImpl
}

//NewNotFound creates and returns a new instance of a NotFound with the supplied problem detail
func NewNotFound(detail, traceID string) *NotFound {
	return &NotFound{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     "https://frontblok.dev/errors/NotFound",
			title:   "Not Found",
			detail:  detail,
			code:    http.StatusNotFound,
			traceID: traceID,
		},
	}
}

//ReportNotFound creates a NotFound instance and sends it to the supplied http.ResponseWriter
func ReportNotFound(w http.ResponseWriter, detail, traceID string) {
	nf := NewNotFound(detail, traceID)
	nf.WriteResponse(w)
}

//ContentType returns the ContentType to be used when returning this problem
func (p *ProblemDetailsImpl) ContentType() string {
	return ProblemReportContentType
}

//Type returns the type URI identifying the problem class
func (p *ProblemDetailsImpl) Type() string {
	return p.typ
}

//Title returns the short human readable summary of the problem
func (p *ProblemDetailsImpl) Title() string {
	return p.title
}

//Detail returns the explanation specific to this occurrence of the problem
func (p *ProblemDetailsImpl) Detail() string {
	return p.detail
}

//MarshalJSON is called when a ProblemDetailsImpl instance should be serialized to JSON
func (p *ProblemDetailsImpl) MarshalJSON() ([]byte, error) {
	var traceID *string

	if p.traceID != "" {
		traceID = &p.traceID
	}

	j, err := json.Marshal(struct {
		Type    string  `json:"type"`
		Title   string  `json:"title"`
		Detail  string  `json:"detail"`
		TraceID *string `json:"traceID,omitempty"`
	}{
		Type:    p.typ,
		Title:   p.title,
		Detail:  p.detail,
		TraceID: traceID,
	})
	if err != nil {
		return nil, err
	}

	return j, nil
}

//ResponseCode returns the HTTP response code to be used when returning a specific problem
func (p *ProblemDetailsImpl) ResponseCode() int {

	if p.code != 0 {
		return p.code
	}

	return http.StatusBadRequest
}

//WriteResponse writes the contents of this instance to a http.ResponseWriter
func (p *ProblemDetailsImpl) WriteResponse(w http.ResponseWriter) {
	w.Header().Add("Content-Type", p.ContentType())
	w.Header().Add("Content-Language", "en")
	w.WriteHeader(p.ResponseCode())

	pdbytes, err := json.MarshalIndent(p, "", "  ")
	if err == nil {
		w.Write(pdbytes)
	}
}
