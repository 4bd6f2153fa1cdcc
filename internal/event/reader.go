package event

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	appLog "rexgen/internal/log"
)

// ReadFile parses one CSV file and returns its published Events. Any row
// that cannot be normalized is fatal; there is no skip-and-continue.
func ReadFile(path string, n *Normalizer) ([]*Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	events, err := readAll(f, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	appLog.Info("csv processed", "file", path, "published_count", len(events))
	return events, nil
}

func readAll(r io.Reader, n *Normalizer) ([]*Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		// Sheets exported from Excel as "CSV UTF-8" carry a BOM.
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	var events []*Event
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}

		ev, err := n.Normalize(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if ev.Published {
			events = append(events, ev)
		}
	}

	return events, nil
}

// Discover lists the CSV files under eventsDir that feed the main event
// set, excluding the orientation file. The result is sorted so ingest order
// is stable.
func Discover(eventsDir, orientationPath string) ([]string, error) {
	entries, err := os.ReadDir(eventsDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		p := filepath.Join(eventsDir, entry.Name())
		if orientationPath != "" && p == orientationPath {
			continue
		}
		files = append(files, p)
	}

	sort.Strings(files)
	return files, nil
}
