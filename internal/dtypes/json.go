package dtypes

import (
	"encoding/json"
	"fmt"
)

// Deserializer turns engine-native JSON text into an in-memory value.
type Deserializer func(data []byte) (any, error)

func defaultDeserializer(data []byte) (any, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// JSON is the engine's JSON column type. Values travel as JSON text; an
// injected deserializer lets callers materialize results as something other
// than generic maps and slices.
type JSON struct {
	deserializer Deserializer
}

// NewJSON builds a JSON type. A nil deserializer selects json.Unmarshal.
func NewJSON(deserializer Deserializer) *JSON {
	if deserializer == nil {
		deserializer = defaultDeserializer
	}
	return &JSON{deserializer: deserializer}
}

// DDLText renders the bare type keyword. The deserializer is a client-side
// concern and never appears in DDL.
func (j *JSON) DDLText() string {
	return "JSON"
}

// CacheKey is constant: JSON values have no shape parameters.
func (j *JSON) CacheKey() string {
	return "json"
}

// Encode serializes a value to JSON text for parameter binding.
func (j *JSON) Encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON value: %w", err)
	}
	return data, nil
}

// Decode materializes result text through the configured deserializer.
// Nil input decodes to nil.
func (j *JSON) Decode(data []byte) (any, error) {
	if data == nil {
		return nil, nil
	}
	value, err := j.deserializer(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JSON value: %w", err)
	}
	return value, nil
}
