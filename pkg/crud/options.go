package crud

import (
	"fmt"
	"net/url"
)

// Options is an optional set of query parameters for collection fetches,
// passed through to the server as-is. Values are scalars (strings, numbers,
// booleans). A nil value means "not set" and is omitted from the encoded
// query rather than serialized as an empty parameter.
type Options map[string]any

// Encode renders the options as a URL query string, leading "?" included.
// Keys are encoded in sorted order so derived request paths are
// deterministic. Empty or all-nil options encode to "".
func (o Options) Encode() string {
	values := url.Values{}

	for k, v := range o {
		if v == nil {
			continue
		}
		values.Set(k, fmt.Sprintf("%v", v))
	}

	if len(values) == 0 {
		return ""
	}

	return "?" + values.Encode()
}
