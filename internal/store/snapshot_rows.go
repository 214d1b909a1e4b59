package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-trip-keeper/models"
)

// entityRow is one element of a stored collection. Settings is stored as a
// single row without an entity id.
type entityRow struct {
	EntityID string
	Position int
	Data     []byte
}

// splitCollection validates blob and splits it into compact rows.
func splitCollection(c models.Collection, blob json.RawMessage) ([]entityRow, error) {
	if err := models.ValidateBlob(c, blob); err != nil {
		return nil, err
	}

	if !c.IsList() {
		compact, err := compactJSON(blob)
		if err != nil {
			return nil, err
		}
		return []entityRow{{Data: compact}}, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(blob, &elements); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrMalformedCollection, err)
	}

	rows := make([]entityRow, 0, len(elements))
	for i, element := range elements {
		compact, err := compactJSON(element)
		if err != nil {
			return nil, err
		}
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(compact, &head); err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrMalformedCollection, err)
		}
		rows = append(rows, entityRow{EntityID: head.ID, Position: i, Data: compact})
	}

	return rows, nil
}

// joinCollection reassembles rows (ordered by position) into the compact
// blob that was pushed.
func joinCollection(c models.Collection, rows []entityRow) json.RawMessage {
	if !c.IsList() {
		if len(rows) == 0 {
			return json.RawMessage(`{}`)
		}
		return append(json.RawMessage(nil), rows[0].Data...)
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(row.Data)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func compactJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrMalformedCollection, err)
	}
	return buf.Bytes(), nil
}
