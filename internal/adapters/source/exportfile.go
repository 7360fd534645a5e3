package source

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/internal/domain/normalize"
	"github.com/kairyx-ai/kairyx/pkg/logger"
)

const defaultExportFileName = "export-file"

// ExportFile reads vendor export files from a local directory: gzipped
// JSON-lines (one event per line, the vendor's export format) with a plain
// .json array fallback. Events outside the requested window are filtered out.
type ExportFile struct {
	name string
	dir  string
	log  logger.Logger
}

// NewExportFile creates a file-based export connector over dir.
func NewExportFile(dir string, opts ...ExportFileOption) (*ExportFile, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrNoExportDir
	}
	e := &ExportFile{
		name: defaultExportFileName,
		dir:  dir,
		log:  logger.Get().Named("source"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Name identifies this connector instance.
func (e *ExportFile) Name() string {
	return e.name
}

// Export reads every export file in the directory and keeps the events whose
// timestamp falls inside [start, end]. Files that cannot be parsed are
// skipped with a warning rather than failing the whole export.
func (e *ExportFile) Export(ctx context.Context, start, end time.Time) ([]model.RawEvent, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return nil, fmt.Errorf("list export directory: %w", err)
	}

	// End of the window is inclusive at day granularity.
	windowEnd := end.AddDate(0, 0, 1)

	var events []model.RawEvent
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("export cancelled: %w", err)
		}

		path := filepath.Join(e.dir, entry.Name())
		var batch []model.RawEvent
		switch {
		case strings.HasSuffix(entry.Name(), ".json.gz"), strings.HasSuffix(entry.Name(), ".gz"):
			batch, err = readGzipLines(path)
		case strings.HasSuffix(entry.Name(), ".json"):
			batch, err = readJSONArray(path)
		default:
			continue
		}
		if err != nil {
			e.log.Warn(ctx, "skipping unreadable export file",
				logger.String("file", entry.Name()),
				logger.Error(err),
			)
			continue
		}

		for _, ev := range batch {
			ts, err := model.ParseEventTime(ev.EventTime)
			if err != nil {
				continue
			}
			if ts.Before(start) || !ts.Before(windowEnd) {
				continue
			}
			events = append(events, ev)
		}
	}
	return events, nil
}

// readGzipLines decodes a gzipped JSON-lines export file.
func readGzipLines(path string) ([]model.RawEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export file: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer zr.Close()

	var events []model.RawEvent
	scanner := bufio.NewScanner(zr)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev model.RawEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return nil, fmt.Errorf("decode export line: %w", err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read export stream: %w", err)
	}
	return events, nil
}

// readJSONArray decodes a plain JSON array export file.
func readJSONArray(path string) ([]model.RawEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read export file: %w", err)
	}
	return normalize.DecodeRawEvents(data)
}

var _ Connector = (*ExportFile)(nil)
