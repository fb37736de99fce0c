package persist

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// CSVSink appends rows to a CSV file. The header is written exactly once,
// when the destination is empty; reopening an existing file keeps
// appending rows under the original header.
type CSVSink struct {
	f           *os.File
	header      []string
	needsHeader bool
}

// CSVHeader builds the row schema for the given channels and bands:
// timestamp, one raw column per channel, then one column per
// (band, channel) pair.
func CSVHeader(channels, bands []string) []string {
	header := make([]string, 0, 1+len(channels)*(1+len(bands)))
	header = append(header, "Timestamp")
	header = append(header, channels...)
	for _, band := range bands {
		for _, ch := range channels {
			header = append(header, band+" - "+ch)
		}
	}
	return header
}

// NewCSVSink opens (or creates) the file at path for appending.
func NewCSVSink(path string, header []string) (*CSVSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("persist: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("persist: stat %s: %w", path, err)
	}

	return &CSVSink{
		f:           f,
		header:      append([]string(nil), header...),
		needsHeader: info.Size() == 0,
	}, nil
}

// WriteRow appends one row, writing the header first if the file was empty.
// The row is flushed to the file before returning so that a crash or
// cancellation never leaves a partial record buffered.
func (s *CSVSink) WriteRow(row Row) error {
	w := csv.NewWriter(s.f)

	if s.needsHeader {
		if err := w.Write(s.header); err != nil {
			return fmt.Errorf("persist: write header: %w", err)
		}
		s.needsHeader = false
	}

	record := make([]string, 0, 1+len(row.Values))
	record = append(record, strconv.FormatFloat(row.Timestamp, 'f', 6, 64))
	for _, v := range row.Values {
		record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("persist: write row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("persist: flush: %w", err)
	}
	return nil
}

// Close closes the underlying file. The destination remains appendable.
func (s *CSVSink) Close() error {
	return s.f.Close()
}
