package crud

// Payload carries the entity fields of a create or update request. Contents
// are forwarded to the server verbatim: no validation, renaming or type
// coercion happens on the client side. The one shaping step that does happen
// is that reserved header fields are stripped before the request is encoded,
// since the server owns id and timestamps.
type Payload map[string]any

// Sanitized returns a copy of the payload with the reserved header fields
// removed.
func (p Payload) Sanitized() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		if isReserved(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// PayloadDecoratorFunc sets a single field on a payload under construction.
type PayloadDecoratorFunc func(p Payload)

// NewPayload builds a payload by applying the given decorators in order.
func NewPayload(decorators ...PayloadDecoratorFunc) Payload {
	p := Payload{}
	for _, decorator := range decorators {
		decorator(p)
	}
	return p
}

// Field returns a decorator that sets the named field.
func Field(name string, value any) PayloadDecoratorFunc {
	return func(p Payload) {
		p[name] = value
	}
}
