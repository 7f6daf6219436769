// Writer implementation printing assignments to STDOUT
package results

import (
	"encoding/json"
	"fmt"
)

// StdoutWriter prints assignment rows to STDOUT as JSON lines.
type StdoutWriter struct{}

// Write outputs a single assignment row.
func (w *StdoutWriter) Write(row AssignmentRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteBatch outputs multiple assignment rows.
func (w *StdoutWriter) WriteBatch(rows []AssignmentRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteSummary prints a tile summary to STDOUT.
func (w *StdoutWriter) WriteSummary(s TileSummaryRow) error {
	data, _ := json.Marshal(s)
	fmt.Println(string(data))
	return nil
}
