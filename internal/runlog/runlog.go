// Package runlog keeps an append-only CSV record of what each pipeline run
// skipped and persisted.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Status is the outcome recorded by an Entry.
type Status string

const (
	StatusSkipped       Status = "skipped"
	StatusPersisted     Status = "persisted"
	StatusPersistFailed Status = "persist_failed"
)

// Entry is one row in the run log. Kind and Entity are empty for sink rows.
type Entry struct {
	Timestamp   time.Time
	RunID       string
	Granularity string
	Kind        string
	Entity      string
	Status      Status
	Details     string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,run_id,granularity,kind,entity,status,details"

// IgnorePattern matches the log directory in an output .gitignore. The log
// changes on every run and is kept out of output snapshots.
const IgnorePattern = logDir + "/"

const (
	numFields      = 7
	logDir         = "logs"
	logFile        = "logs/run-log.csv"
	colTimestamp   = 0
	colRunID       = 1
	colGranularity = 2
	colKind        = 3
	colEntity      = 4
	colStatus      = 5
	colDetails     = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colGranularity] = e.Granularity
	row[colKind] = e.Kind
	row[colEntity] = e.Entity
	row[colStatus] = string(e.Status)
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp:   ts,
		RunID:       record[colRunID],
		Granularity: record[colGranularity],
		Kind:        record[colKind],
		Entity:      record[colEntity],
		Status:      Status(record[colStatus]),
		Details:     record[colDetails],
	}, nil
}

// Path returns the run log location under outputDir.
func Path(outputDir string) string {
	return filepath.Join(outputDir, logFile)
}

// Append writes entries to <outputDir>/logs/run-log.csv, creating the file
// and header if needed.
func Append(outputDir string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	dir := filepath.Join(outputDir, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(outputDir)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <outputDir>/logs/run-log.csv.
// Returns an empty slice if the file does not exist.
func Read(outputDir string) ([]Entry, error) {
	f, err := os.Open(Path(outputDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
