package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedCollection is returned when a collection blob does not have
// the shape its collection requires.
var ErrMalformedCollection = errors.New("malformed collection")

// ValidateBlob checks that blob is valid JSON of the shape c requires: an
// object for [Settings], an array of objects each carrying a string "id"
// for every other collection.
func ValidateBlob(c Collection, blob json.RawMessage) error {
	if !c.Valid() {
		return fmt.Errorf("%w: unknown collection %q", ErrMalformedCollection, c)
	}

	trimmed := bytes.TrimSpace(blob)
	if !json.Valid(trimmed) {
		return fmt.Errorf("%w: %s is not valid JSON", ErrMalformedCollection, c)
	}

	if !c.IsList() {
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return fmt.Errorf("%w: %s must be an object", ErrMalformedCollection, c)
		}
		return nil
	}

	var records []Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return fmt.Errorf("%w: %s must be an array of records", ErrMalformedCollection, c)
	}
	for i, r := range records {
		if r == nil || r.ID() == "" {
			return fmt.Errorf("%w: %s[%d] has no id", ErrMalformedCollection, c, i)
		}
	}

	return nil
}
