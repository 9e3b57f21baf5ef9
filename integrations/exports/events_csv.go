// Package exports renders journaled ledger events for offline reconciliation.
package exports

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"strconv"
	"time"

	"stablestake/storage/journal"
)

// EventsCSV builds a CSV export of records and returns the serialised data
// alongside a SHA-256 checksum of the payload. Attributes are written as a
// JSON object in the last column.
func EventsCSV(records []journal.Record) ([]byte, string, error) {
	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)
	header := []string{"seq", "id", "type", "account", "recorded_at", "attributes"}
	if err := writer.Write(header); err != nil {
		return nil, "", err
	}
	for _, record := range records {
		attrs := record.Attributes
		if attrs == "" {
			attrs = "{}"
		}
		row := []string{
			strconv.FormatUint(record.Seq, 10),
			record.EventID.String(),
			record.Type,
			record.Account,
			record.RecordedAt.UTC().Format(time.RFC3339Nano),
			attrs,
		}
		if err := writer.Write(row); err != nil {
			return nil, "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}
	data := buffer.Bytes()
	return data, checksum(data), nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
