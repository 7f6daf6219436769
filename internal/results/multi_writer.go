package results

// MultiWriter fans out assignment rows and tile summaries to multiple
// writers.
type MultiWriter struct {
	writers        []Writer
	summaryWriters []SummaryWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws []Writer, sws []SummaryWriter) *MultiWriter {
	return &MultiWriter{writers: ws, summaryWriters: sws}
}

// Write sends an assignment row to all writers.
func (mw *MultiWriter) Write(row AssignmentRow) error {
	for _, w := range mw.writers {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []AssignmentRow) error {
	for _, w := range mw.writers {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteSummary sends a tile summary to all summary writers.
func (mw *MultiWriter) WriteSummary(s TileSummaryRow) error {
	for _, w := range mw.summaryWriters {
		if err := w.WriteSummary(s); err != nil {
			return err
		}
	}
	return nil
}
