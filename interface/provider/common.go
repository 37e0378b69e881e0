package provider

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/cavaliercoder/grab"
)

// ErrArchiveNotFound is an error returned when the archive is not found or unavailable
type ErrArchiveNotFound struct {
	URL string
}

func (e ErrArchiveNotFound) Error() string {
	return fmt.Sprintf("Archive not found or unavailable: %s", e.URL)
}

// FormatBytes returns a human-readable size
func FormatBytes(bytes int64) string {
	v := float64(bytes)
	switch {
	case v > 1<<30:
		return fmt.Sprintf("%.2fGo", v/(1<<30))
	case v > 1<<20:
		return fmt.Sprintf("%.2fMo", v/(1<<20))
	case v > 1<<10:
		return fmt.Sprintf("%.2fko", v/(1<<10))
	default:
		return fmt.Sprintf("%.2fo", v)
	}
}

// watchProgress reports the progress of resp every interval, and once more when it completes successfully.
// It returns when the transfer is done.
func watchProgress(resp *grab.Response, interval time.Duration, progress ProgressFunc) {
	t := time.NewTicker(interval)
	defer t.Stop()

	report := func() {
		if progress != nil && resp.Size > 0 {
			progress(resp.Progress(), resp.BytesComplete(), resp.Size)
		}
	}
	for {
		select {
		case <-t.C:
			report()
		case <-resp.Done:
			if resp.Err() == nil {
				report()
			}
			return
		}
	}
}

// WriteCounter counts the number of bytes written to it and reports the progress.
// It can be passed to io.TeeReader() or used to wrap an io.WriterAt.
type WriteCounter struct {
	Total    int64
	Progress ProgressFunc
	done     atomic.Int64
}

func (wc *WriteCounter) add(n int) {
	done := wc.done.Add(int64(n))
	if wc.Progress != nil && wc.Total > 0 {
		wc.Progress(float64(done)/float64(wc.Total), done, wc.Total)
	}
}

func (wc *WriteCounter) Write(p []byte) (int, error) {
	wc.add(len(p))
	return len(p), nil
}

type writerAtCounter struct {
	w  io.WriterAt
	wc *WriteCounter
}

func (w writerAtCounter) WriteAt(p []byte, off int64) (int, error) {
	n, err := w.w.WriteAt(p, off)
	w.wc.add(n)
	return n, err
}

// writeFile copies r to the file dst, reporting the progress
func writeFile(dst string, r io.Reader, total int64, progress ProgressFunc) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("writeFile.Create: %w", err)
	}
	if _, err := io.Copy(f, io.TeeReader(r, &WriteCounter{Total: total, Progress: progress})); err != nil {
		f.Close()
		return fmt.Errorf("writeFile.Copy: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writeFile.Close: %w", err)
	}
	return nil
}
