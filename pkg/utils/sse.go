package utils

import (
	"errors"
	"io"
	"net/http"
)

// SetupSSEHeaders 设置Server-Sent Events响应头
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// RelaySSE copies an upstream event stream to w unchanged, flushing after
// every read so frames are delivered as soon as they arrive.
// It returns the number of bytes written.
func RelaySSE(w http.ResponseWriter, upstream io.Reader) (int64, error) {
	flusher, _ := w.(http.Flusher)

	SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	if flusher != nil {
		flusher.Flush()
	}

	buf := make([]byte, 4096)
	var written int64
	for {
		n, readErr := upstream.Read(buf)
		if n > 0 {
			m, writeErr := w.Write(buf[:n])
			written += int64(m)
			if writeErr != nil {
				return written, writeErr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
