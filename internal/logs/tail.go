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

// pollInterval paces the re-read loop while a follow call waits for the
// log file to grow.
const pollInterval = 250 * time.Millisecond

// TailOptions controls one tail read. A negative Offset means "the last
// Limit lines"; Follow with a positive Wait blocks up to Wait for new lines
// past the offset.
type TailOptions struct {
	Offset int64         `json:"offset"`
	Limit  int           `json:"limit"`
	Follow bool          `json:"follow"`
	Wait   time.Duration `json:"-"`
}

// TailResult carries the lines read plus the offset to resume from.
type TailResult struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// Tail reads log lines from path. Callers feed each result's Offset back
// in to stream the file incrementally; a missing file yields an empty
// result rather than an error so clients can poll before the daemon has
// written anything.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	if opts.Wait < 0 {
		opts.Wait = 0
	}
	deadline := time.Now().Add(opts.Wait)

	for {
		result, err := readOnce(path, opts)
		if err != nil || len(result.Lines) > 0 {
			return result, err
		}
		if !opts.Follow || opts.Wait <= 0 || !time.Now().Before(deadline) {
			return result, nil
		}

		// Nothing new yet. Resume forward from where this pass ended so a
		// backward initial read does not replay old lines on the next one.
		opts.Offset = result.Offset
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// readOnce performs one non-blocking pass: the last Limit lines when
// Offset is negative, otherwise everything from Offset forward. The
// returned offset marks the end of what was consumed.
func readOnce(path string, opts TailOptions) (TailResult, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return TailResult{}, nil
		}
		return TailResult{Offset: opts.Offset}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return TailResult{Offset: opts.Offset}, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return TailResult{Offset: opts.Offset}, fmt.Errorf("log path %q is a directory", path)
	}
	size := info.Size()

	if opts.Offset < 0 {
		lines, err := lastLines(file, opts.Limit)
		if err != nil {
			return TailResult{Offset: opts.Offset}, err
		}
		return TailResult{Lines: lines, Offset: size}, nil
	}

	offset := opts.Offset
	if offset > size {
		// The file shrank under us (rotation or truncation); restart at
		// the end rather than re-emitting stale content.
		offset = size
	}
	return linesFrom(file, offset)
}

// lastLines scans the file once, keeping a sliding window of the final
// limit lines. The retention sweep bounds log size, so a linear pass is
// fine here.
func lastLines(file *os.File, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	scanner := newLineScanner(file)
	var window []string
	for scanner.Scan() {
		window = append(window, scanner.Text())
		if len(window) > limit {
			window = window[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	return window, nil
}

func linesFrom(file *os.File, offset int64) (TailResult, error) {
	result := TailResult{Offset: offset}

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return result, fmt.Errorf("seek log file: %w", err)
	}
	scanner := newLineScanner(file)
	for scanner.Scan() {
		result.Lines = append(result.Lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("read log file: %w", err)
	}

	end, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return result, fmt.Errorf("determine log offset: %w", err)
	}
	result.Offset = end
	return result, nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
