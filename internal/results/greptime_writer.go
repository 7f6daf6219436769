package results

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// greptimeClient abstracts the ingester client for testing.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes assignment rows and tile summaries to GreptimeDB
// via the ingester client. Tables are auto-created on first ingest.
type GreptimeDBWriter struct {
	client       greptimeClient
	rowTable     string
	summaryTable string
}

// NewGreptimeDBWriter creates a new GreptimeDB writer. The endpoint is
// "host" or "host:port"; a missing port falls back to the client default.
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, portStr, splitErr := net.SplitHostPort(endpoint)
	if splitErr != nil {
		host, portStr = endpoint, ""
	}

	cfg := greptime.NewConfig(host).WithDatabase(database)
	if portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid greptimedb endpoint %q: %w", endpoint, err)
		}
		cfg = cfg.WithPort(port)
	}

	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{
		client:       client,
		rowTable:     AssignmentTableName,
		summaryTable: "tile_summaries",
	}, nil
}

// Write inserts a single assignment row.
func (w *GreptimeDBWriter) Write(row AssignmentRow) error {
	return w.WriteBatch([]AssignmentRow{row})
}

// WriteBatch inserts multiple assignment rows.
func (w *GreptimeDBWriter) WriteBatch(rows []AssignmentRow) error {
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.rowTable)
	if err != nil {
		return err
	}
	for _, addErr := range []error{
		tbl.AddTagColumn("run_id", types.STRING),
		tbl.AddTagColumn("tile_id", types.INT64),
		tbl.AddFieldColumn("fiber_id", types.INT64),
		tbl.AddFieldColumn("target_id", types.INT64),
		tbl.AddFieldColumn("x", types.FLOAT64),
		tbl.AddFieldColumn("y", types.FLOAT64),
		tbl.AddFieldColumn("distance", types.FLOAT64),
		tbl.AddTimestampColumn("ts", types.TIMESTAMP_MICROSECOND),
	} {
		if addErr != nil {
			return addErr
		}
	}

	for _, r := range rows {
		err := tbl.AddRow(r.RunID, r.TileID, r.FiberID, r.TargetID,
			r.X, r.Y, r.Distance, r.Timestamp)
		if err != nil {
			return err
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		log.Printf("[GreptimeDBWriter] write failed: %v", err)
		return err
	}
	return nil
}

// WriteSummary inserts a tile summary row.
func (w *GreptimeDBWriter) WriteSummary(s TileSummaryRow) error {
	tbl, err := table.New(w.summaryTable)
	if err != nil {
		return err
	}
	for _, addErr := range []error{
		tbl.AddTagColumn("run_id", types.STRING),
		tbl.AddTagColumn("tile_id", types.INT64),
		tbl.AddFieldColumn("tile_ra", types.FLOAT64),
		tbl.AddFieldColumn("tile_dec", types.FLOAT64),
		tbl.AddFieldColumn("targets", types.INT64),
		tbl.AddFieldColumn("fibers", types.INT64),
		tbl.AddFieldColumn("assigned", types.INT64),
		tbl.AddFieldColumn("free_fibers", types.INT64),
		tbl.AddTimestampColumn("ts", types.TIMESTAMP_MICROSECOND),
	} {
		if addErr != nil {
			return addErr
		}
	}

	err = tbl.AddRow(s.RunID, s.TileID, s.RA, s.Dec,
		int64(s.Targets), int64(s.Fibers), int64(s.Assigned), int64(s.FreeFibers),
		s.Timestamp)
	if err != nil {
		return err
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		log.Printf("[GreptimeDBWriter] summary write failed: %v", err)
		return err
	}
	return nil
}
