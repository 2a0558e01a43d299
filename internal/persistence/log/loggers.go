package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"landfall.gg/internal/sim/world"
)

type JSONLZstdWriter struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	dir := filepath.Dir(w.pathForHour(hour))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// CommandLogger writes one JSONL entry per tick (compressed). The files
// under <matchDir>/commands are the authoritative replay stream.
type CommandLogger struct{ w *JSONLZstdWriter }

func NewCommandLogger(matchDir string) *CommandLogger {
	return &CommandLogger{w: NewJSONLZstdWriter(filepath.Join(matchDir, "commands"), "commands")}
}

func (l *CommandLogger) WriteTick(v world.CommandLogEntry) error { return l.w.Write(v) }
func (l *CommandLogger) Close() error                            { return l.w.Close() }

// ReadCommandLog streams every recorded tick under <matchDir>/commands in
// tick order, invoking fn per entry. Rotated files sort lexically by hour,
// so walking them in name order preserves the stream.
func ReadCommandLog(matchDir string, fn func(world.CommandLogEntry) error) error {
	dir := filepath.Join(matchDir, "commands")
	names, err := filepath.Glob(filepath.Join(dir, "commands-*.jsonl.zst"))
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no command log under %s", dir)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := readCommandFile(name, fn); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func readCommandFile(name string, fn func(world.CommandLogEntry) error) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry world.CommandLogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return err
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return sc.Err()
}
