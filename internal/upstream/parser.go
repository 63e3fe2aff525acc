package upstream

import (
	"encoding/json"

	dErrors "faultline/pkg/domain-errors"
)

// MessageParseFailed is reported whenever a payload cannot be decoded.
const MessageParseFailed = "API response parse error"

// Record is a decoded payload.
type Record map[string]any

// Name returns the name field, or "" if absent or not a string.
func (r Record) Name() string {
	return r.stringField("name")
}

// ID returns the id field, or "" if absent or not a string.
func (r Record) ID() string {
	return r.stringField("id")
}

func (r Record) stringField(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Parse decodes raw into a Record. Decode failures are never returned as is:
// they come back as a 503 with the decode error kept as cause.
func Parse(raw RawPayload) (Record, error) {
	var record Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, MessageParseFailed)
	}
	if record == nil {
		// "null" decodes without error but yields no object.
		return nil, dErrors.New(dErrors.CodeUnavailable, MessageParseFailed)
	}
	return record, nil
}
