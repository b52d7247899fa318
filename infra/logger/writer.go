package logger

import (
	"bytes"
	"sync"
)

// LineWriter forwards complete lines written to it as log entries. It is used
// to capture the output of child processes.
type LineWriter struct {
	mu     sync.Mutex
	log    Logger
	stream string
	buf    bytes.Buffer
}

// NewLineWriter logs each line at info level with a stream field.
func NewLineWriter(l Logger, stream string) *LineWriter {
	return &LineWriter{log: l, stream: stream}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(bytes.TrimRight(w.buf.Next(i+1), "\r\n"))
		w.emit(line)
	}
	return len(p), nil
}

// Close flushes a trailing partial line.
func (w *LineWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
	return nil
}

func (w *LineWriter) emit(line string) {
	if line == "" {
		return
	}
	w.log.Infow(line, map[string]any{"stream": w.stream})
}
