package csv

import (
	"bytes"
	"encoding/csv"
)

// Row is anything that can render itself as one line of a tabular report.
type Row interface {
	Fields() []string
}

type FilterFunc[T Row] func(T) bool

// Create renders the records as CSV bytes under the given header, keeping
// only those the filter accepts. A nil filter keeps everything. Fields are
// quoted as needed, since customer names and BRL amounts carry commas.
func Create[T Row](header []string, records []T, filter FilterFunc[T]) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	for _, r := range records {
		if filter == nil || filter(r) {
			_ = w.Write(r.Fields())
		}
	}
	w.Flush()
	return buf.Bytes()
}
