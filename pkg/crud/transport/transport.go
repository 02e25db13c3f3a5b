// Package transport provides the default HTTP implementation of the request
// executor that the entity client is constructed over. It owns everything the
// client deliberately does not: the base URL, headers and authentication,
// JSON content negotiation and the mapping of non-2xx responses to errors.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/velosovictor/frontblok-crud/pkg/crud/client"
	crderrors "github.com/velosovictor/frontblok-crud/pkg/crud/errors"
)

func Debug(enabled string) func(*httpExecutor) {
	return func(e *httpExecutor) {
		e.debug = (enabled == "true")
	}
}

// WithHeader adds a header to every outgoing request, e.g. an Authorization
// header. May be given multiple times.
func WithHeader(name, value string) func(*httpExecutor) {
	return func(e *httpExecutor) {
		e.headers.Add(name, value)
	}
}

// New creates an executor that resolves endpoint paths against the given
// base URL.
func New(baseURL string, options ...func(*httpExecutor)) client.Executor {
	e := &httpExecutor{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		headers: http.Header{},
		debug:   false,
	}

	for _, option := range options {
		option(e)
	}

	return e
}

type httpExecutor struct {
	baseURL string
	headers http.Header
	debug   bool
}

func (e httpExecutor) Execute(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	httpClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewBuffer(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), crderrors.ErrInternal)
	}

	req.Header.Set("Accept", "application/json")
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	for header, headerValue := range e.headers {
		for _, val := range headerValue {
			req.Header.Add(header, val)
		}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, crderrors.NewRequestFailedError(fmt.Sprintf("failed to send request: %s", err.Error()))
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, crderrors.NewRequestFailedError(fmt.Sprintf("failed to read response body: %s", err.Error()))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if e.debug {
			reqbytes, _ := httputil.DumpRequest(req, false)
			respbytes, _ := httputil.DumpResponse(resp, false)

			log := logging.GetFromContext(ctx)
			log.Error("request failed", "request", string(reqbytes), "response", string(respbytes))
		}

		return nil, crderrors.NewErrorFromProblemReport(resp.StatusCode, resp.Header.Get("Content-Type"), respBody)
	}

	return respBody, nil
}
