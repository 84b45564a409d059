package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Payload is a successful response body, either JSON or plain text depending
// on the declared content type.
type Payload struct {
	StatusCode  int
	ContentType string
	raw         []byte
}

// NewPayload wraps an already-read body.
func NewPayload(statusCode int, contentType string, body []byte) *Payload {
	return &Payload{StatusCode: statusCode, ContentType: contentType, raw: body}
}

func (p *Payload) IsJSON() bool {
	return strings.Contains(strings.ToLower(p.ContentType), "application/json")
}

// Decode unmarshals a JSON payload into v.
func (p *Payload) Decode(v any) error {
	if !p.IsJSON() {
		return fmt.Errorf("%w: content type %q", ErrNotJSON, p.ContentType)
	}
	if err := json.Unmarshal(p.raw, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Value returns the decoded JSON value, or the raw text for non-JSON payloads.
func (p *Payload) Value() (any, error) {
	if !p.IsJSON() {
		return p.Text(), nil
	}
	var v any
	if err := json.Unmarshal(p.raw, &v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}

func (p *Payload) Text() string {
	return string(p.raw)
}

func (p *Payload) Bytes() []byte {
	return p.raw
}
