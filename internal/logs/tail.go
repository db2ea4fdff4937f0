package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// TailOptions selects a window of log lines. A negative Offset asks for the
// last Limit lines of the file; otherwise reading starts at Offset and runs
// to the end. A positive Wait turns the call into a follow step: when the
// window comes back empty, Tail keeps polling for new lines until Wait
// elapses or ctx ends.
type TailOptions struct {
	Offset int64
	Limit  int
	Wait   time.Duration
}

// TailResult carries the lines read and the cursor to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

const followPollInterval = 250 * time.Millisecond

// Tail reads a window of lines from the log file at path. A missing file is
// not an error: the daemon may not have written anything yet, so the caller
// gets an empty window with a zero cursor and can simply ask again later.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	res, err := readWindow(path, opts.Offset, opts.Limit)
	if err != nil || len(res.Lines) > 0 || opts.Wait <= 0 {
		return res, err
	}

	deadline := time.Now().Add(opts.Wait)
	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-ticker.C:
		}

		next, err := readWindow(path, res.Offset, opts.Limit)
		if err != nil {
			return res, err
		}
		res = next
		if len(res.Lines) > 0 || time.Now().After(deadline) {
			return res, nil
		}
	}
}

// readWindow performs one bounded read. It always scans to end of file, so
// the returned cursor is the file size at the time of the read; a stale
// cursor past the end (the file was rotated underneath us) restarts at the
// current end rather than erroring.
func readWindow(path string, offset int64, limit int) (TailResult, error) {
	res := TailResult{Offset: offset}
	if offset < 0 {
		res.Offset = 0
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Offset = 0
			return res, nil
		}
		return res, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return res, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return res, fmt.Errorf("log path %q is a directory", path)
	}
	size := info.Size()

	lastLines := offset < 0
	if !lastLines {
		if offset > size {
			offset = size
		}
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return res, fmt.Errorf("seek log file: %w", err)
		}
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var lines []string
	for sc.Scan() {
		if lastLines && limit <= 0 {
			// Skip-to-end: the caller only wants a cursor at the tail.
			continue
		}
		lines = append(lines, sc.Text())
		if lastLines && len(lines) > limit {
			copy(lines, lines[1:])
			lines = lines[:limit]
		}
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("read log file: %w", err)
	}

	res.Lines = lines
	res.Offset = size
	return res, nil
}
