package inbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/propdesk/internal/leadcsv"
	"github.com/starford/propdesk/internal/storage"
	"github.com/starford/propdesk/internal/store"
)

const sample = "Name,Email,Status\nPriya,priya@example.com,new\nRaj,raj@example.com,contacted\n"

type storeImporter struct{ s *store.Store }

func (si storeImporter) ImportCSV(r io.Reader) (leadcsv.Summary, error) {
	return leadcsv.Import(r, si.s)
}

func setup(t *testing.T) (*Inbox, *storage.FS, *store.Store) {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	require.NoError(t, err)
	s := store.New()
	in, err := New(fs, storeImporter{s}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return in, fs, s
}

func TestProcessImportsAndMoves(t *testing.T) {
	in, fs, s := setup(t)
	require.NoError(t, fs.Write("batch.csv", []byte(sample)))

	res, err := in.Process("batch.csv")
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, 2, res.Summary.Imported)
	assert.Len(t, s.Snapshot().Leads, 2)

	_, err = fs.Read("batch.csv")
	assert.Error(t, err, "original should be moved")
	moved, err := fs.Read(res.MovedTo)
	require.NoError(t, err)
	assert.Equal(t, sample, string(moved))

	report, err := fs.Read(res.MovedTo[:len(res.MovedTo)-len(".csv")] + ".json")
	require.NoError(t, err)
	assert.Contains(t, string(report), `"imported": 2`)
}

func TestProcessDuplicateContent(t *testing.T) {
	in, fs, s := setup(t)
	require.NoError(t, fs.Write("a.csv", []byte(sample)))
	_, err := in.Process("a.csv")
	require.NoError(t, err)

	require.NoError(t, fs.Write("b.csv", []byte(sample)))
	res, err := in.Process("b.csv")
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Len(t, s.Snapshot().Leads, 2, "duplicate must not import again")
}

func TestNewRemembersProcessedFiles(t *testing.T) {
	in, fs, s := setup(t)
	require.NoError(t, fs.Write("a.csv", []byte(sample)))
	_, err := in.Process("a.csv")
	require.NoError(t, err)

	again, err := New(fs, storeImporter{s}, in.logger)
	require.NoError(t, err)
	require.NoError(t, fs.Write("c.csv", []byte(sample)))
	res, err := again.Process("c.csv")
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
}

func TestProcessBadFileIsMovedWithError(t *testing.T) {
	in, fs, s := setup(t)
	require.NoError(t, fs.Write("bad.csv", []byte("Email\nx@y.z\n")))

	res, err := in.Process("bad.csv")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, s.Snapshot().Leads)
	_, err = fs.Read(res.MovedTo)
	assert.NoError(t, err)
}

func TestScanProcessesAllInOrder(t *testing.T) {
	in, fs, s := setup(t)
	require.NoError(t, fs.Write("2.csv", []byte("Name\nSecond\n")))
	require.NoError(t, fs.Write("1.csv", []byte("Name\nFirst\n")))
	require.NoError(t, fs.Write("notes.txt", []byte("ignored")))

	results, err := in.Scan()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1.csv", results[0].File)

	leads := s.Snapshot().Leads
	require.Len(t, leads, 2)
	assert.Equal(t, "First", leads[0].Name)
	assert.Equal(t, "Second", leads[1].Name)
}

func TestWatchPicksUpNewFiles(t *testing.T) {
	in, fs, s := setup(t)
	require.NoError(t, fs.Write("early.csv", []byte("Name\nEarly\n")))

	var mu sync.Mutex
	var got []Result
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- in.Watch(ctx, fs.Root(), 20*time.Millisecond, func(r Result) {
			mu.Lock()
			got = append(got, r)
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 2*time.Second, 10*time.Millisecond, "initial scan")

	require.NoError(t, os.WriteFile(filepath.Join(fs.Root(), "late.csv"), []byte("Name\nLate\n"), 0o644))
	require.Eventually(t, func() bool {
		return len(s.Snapshot().Leads) == 2
	}, 2*time.Second, 10*time.Millisecond, "watched import")

	cancel()
	assert.NoError(t, <-done)
}

func TestProcessSameNameTwiceKeepsBothSummaries(t *testing.T) {
	in, fs, _ := setup(t)
	require.NoError(t, fs.Write("a.csv", []byte(sample)))
	first, err := in.Process("a.csv")
	require.NoError(t, err)

	require.NoError(t, fs.Write("a.csv", []byte(sample)))
	second, err := in.Process("a.csv")
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.NotEqual(t, first.MovedTo, second.MovedTo)
	assert.Equal(t, first.MovedTo[:len(first.MovedTo)-len(".csv")]+"-2.csv", second.MovedTo)

	summary, err := fs.Read(first.MovedTo[:len(first.MovedTo)-len(".csv")] + ".json")
	require.NoError(t, err)
	assert.Contains(t, string(summary), `"imported": 2`, "first summary must survive")
}
