package exports

import (
	"bytes"
	"encoding/json"
	"time"

	"stablestake/storage/journal"
)

// EventsJSONL builds a JSON Lines export of records and returns the payload
// alongside its checksum.
func EventsJSONL(records []journal.Record) ([]byte, string, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	for _, record := range records {
		payload := map[string]interface{}{
			"seq":         record.Seq,
			"id":          record.EventID.String(),
			"type":        record.Type,
			"account":     record.Account,
			"recorded_at": record.RecordedAt.UTC().Format(time.RFC3339Nano),
			"attributes":  record.Attrs(),
		}
		if err := encoder.Encode(payload); err != nil {
			return nil, "", err
		}
	}
	data := buffer.Bytes()
	return data, checksum(data), nil
}
