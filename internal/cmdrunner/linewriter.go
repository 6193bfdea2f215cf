package cmdrunner

import (
	"bytes"
	"io"
)

// lineWriter tees everything written to it into an accumulation buffer
// (so the final Result still carries full stdout/stderr) while also
// invoking a callback per completed line, supporting C8's streamed
// progress events without needing a pipe + goroutine per call.
type lineWriter struct {
	tee    io.Writer
	pend   []byte
	onLine func(string)
}

func newLineWriter(tee io.Writer, onLine func(string)) *lineWriter {
	return &lineWriter{tee: tee, onLine: onLine}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	n, err := w.tee.Write(p)
	if err != nil {
		return n, err
	}

	w.pend = append(w.pend, p...)
	for {
		idx := bytes.IndexByte(w.pend, '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimRight(w.pend[:idx], "\r")
		w.onLine(string(line))
		w.pend = w.pend[idx+1:]
	}
	return n, nil
}
