// Package inbox imports lead CSV files dropped into a watched folder.
//
// Each file is read through a storage.Provider, fingerprinted, imported once
// and moved to the processed/ subfolder together with a JSON summary.
// Content already imported (by checksum) is moved aside without importing.
package inbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/starford/propdesk/internal/checksum"
	"github.com/starford/propdesk/internal/leadcsv"
	"github.com/starford/propdesk/internal/storage"
)

// ProcessedDir is where handled files are moved, relative to the inbox root.
const ProcessedDir = "processed"

const (
	csvExt = ".csv"
	// maxNameAttempts bounds the search for a free processed name.
	maxNameAttempts = 100
)

// Importer adds the leads from a CSV stream.
type Importer interface {
	ImportCSV(r io.Reader) (leadcsv.Summary, error)
}

// Result describes how one dropped file was handled.
type Result struct {
	File      string          `json:"file"`
	Checksum  string          `json:"checksum"`
	MovedTo   string          `json:"moved_to"`
	Duplicate bool            `json:"duplicate"`
	Summary   leadcsv.Summary `json:"summary"`
	Error     string          `json:"error,omitempty"`
}

// Inbox processes CSV files under one storage root.
type Inbox struct {
	files  storage.Provider
	imp    Importer
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]string // checksum -> processed path
}

// New creates an Inbox and remembers the checksums of files already in
// the processed folder so they are not imported again.
func New(files storage.Provider, imp Importer, logger *slog.Logger) (*Inbox, error) {
	in := &Inbox{
		files:  files,
		imp:    imp,
		logger: logger,
		seen:   make(map[string]string),
	}
	done, err := files.List(ProcessedDir, csvExt)
	if err != nil {
		return nil, fmt.Errorf("inbox: list processed: %w", err)
	}
	for _, f := range done {
		in.seen[f.Checksum] = f.Path
	}
	return in, nil
}

// Scan processes every CSV file currently in the inbox root, in name order.
func (in *Inbox) Scan() ([]Result, error) {
	pending, err := in.files.List("", csvExt)
	if err != nil {
		return nil, fmt.Errorf("inbox: scan: %w", err)
	}
	out := make([]Result, 0, len(pending))
	for _, f := range pending {
		res, err := in.Process(f.Path)
		if err != nil {
			in.logger.Warn("inbox: process failed", slog.String("file", f.Path), slog.String("error", err.Error()))
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

// Process imports a single file (relative to the inbox root) and moves it
// to the processed folder. A file whose content has been seen before is
// moved without importing and reported as a duplicate. A file that cannot
// be parsed is still moved so it is not retried; the parse error is kept
// in the result and the summary file.
func (in *Inbox) Process(name string) (Result, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	data, err := in.files.Read(name)
	if err != nil {
		return Result{}, err
	}
	sum := checksum.Sum(data)
	res := Result{File: name, Checksum: sum}

	if prev, ok := in.seen[sum]; ok {
		res.Duplicate = true
		in.logger.Info("inbox: duplicate skipped", slog.String("file", name), slog.String("same_as", prev))
	} else {
		summary, impErr := in.imp.ImportCSV(bytes.NewReader(data))
		if impErr != nil {
			res.Error = impErr.Error()
			in.logger.Warn("inbox: import failed", slog.String("file", name), slog.String("error", impErr.Error()))
		} else {
			res.Summary = summary
			in.logger.Info("inbox: imported",
				slog.String("file", name),
				slog.Int("imported", summary.Imported),
				slog.Int("skipped", summary.Skipped))
		}
	}

	for n := 1; ; n++ {
		res.MovedTo = processedName(name, sum, n)
		err := in.files.Move(name, res.MovedTo)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) || n == maxNameAttempts {
			return res, err
		}
	}
	if !res.Duplicate {
		in.seen[sum] = res.MovedTo
	}

	report, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return res, err
	}
	if err := in.files.Write(strings.TrimSuffix(res.MovedTo, path.Ext(res.MovedTo))+".json", report); err != nil {
		in.logger.Warn("inbox: write summary failed", slog.String("file", name), slog.String("error", err.Error()))
	}
	return res, nil
}

// processedName keeps the original base name and appends a short checksum,
// plus a counter from the second attempt on, so a repeated drop never
// replaces an earlier file or its summary.
func processedName(name, sum string, attempt int) string {
	base := path.Base(name)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext) + "-" + checksum.Short(sum, 8)
	if attempt > 1 {
		stem += "-" + strconv.Itoa(attempt)
	}
	return path.Join(ProcessedDir, stem+ext)
}
