package results

import (
	"encoding/json"
	"os"
)

// FileWriter writes assignment rows and tile summaries to JSONL files.
type FileWriter struct {
	rowFile     *os.File
	summaryFile *os.File
	rowEnc      *json.Encoder
	summaryEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. summaryPath may be empty to skip the
// summary log.
func NewFileWriter(rowPath, summaryPath string) (*FileWriter, error) {
	rf, err := os.Create(rowPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{rowFile: rf, rowEnc: json.NewEncoder(rf)}
	if summaryPath != "" {
		sf, err := os.Create(summaryPath)
		if err != nil {
			rf.Close()
			return nil, err
		}
		fw.summaryFile = sf
		fw.summaryEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// Write logs a single assignment row.
func (f *FileWriter) Write(row AssignmentRow) error {
	return f.rowEnc.Encode(row)
}

// WriteBatch logs multiple assignment rows.
func (f *FileWriter) WriteBatch(rows []AssignmentRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary logs a tile summary, if a summary file was configured.
func (f *FileWriter) WriteSummary(s TileSummaryRow) error {
	if f.summaryEnc == nil {
		return nil
	}
	return f.summaryEnc.Encode(s)
}

// Close closes the underlying files.
func (f *FileWriter) Close() error {
	err := f.rowFile.Close()
	if f.summaryFile != nil {
		if cerr := f.summaryFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
