// Assignment result rows with greptime tags
package results

import (
	"os"
	"time"
)

// AssignmentRow is one fiber-target pairing record for a tile pass. A row is
// emitted for every fiber; FiberID pairs with TargetID = -1 when the fiber
// ended the pass unassigned.
type AssignmentRow struct {
	RunID     string    `json:"run_id"`    // TAG
	TileID    int64     `json:"tile_id"`   // TAG
	FiberID   int64     `json:"fiber_id"`  // FIELD
	TargetID  int64     `json:"target_id"` // FIELD
	X         float64   `json:"x"`         // FIELD
	Y         float64   `json:"y"`         // FIELD
	Distance  float64   `json:"distance"`  // FIELD
	Timestamp time.Time `json:"ts"`        // TIME INDEX
}

// TileSummaryRow aggregates one tile pass.
type TileSummaryRow struct {
	RunID      string    `json:"run_id"`      // TAG
	TileID     int64     `json:"tile_id"`     // TAG
	RA         float64   `json:"tile_ra"`     // FIELD
	Dec        float64   `json:"tile_dec"`    // FIELD
	Targets    int       `json:"targets"`     // FIELD
	Fibers     int       `json:"fibers"`      // FIELD
	Assigned   int       `json:"assigned"`    // FIELD
	FreeFibers int       `json:"free_fibers"` // FIELD
	Timestamp  time.Time `json:"ts"`          // TIME INDEX
}

// AssignmentTableName is the table assignments are written to. It defaults
// to "fiber_assignments" but can be overridden via the GREPTIMEDB_TABLE
// environment variable.
var AssignmentTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "fiber_assignments"
}()

func (AssignmentRow) TableName() string {
	return AssignmentTableName
}

// Writer receives assignment rows.
type Writer interface {
	Write(AssignmentRow) error
}

// SummaryWriter receives per-tile summaries.
type SummaryWriter interface {
	WriteSummary(TileSummaryRow) error
}

// Optional: writers can also support batch mode.
type batchWriter interface {
	WriteBatch([]AssignmentRow) error
}
