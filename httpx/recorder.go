/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package httpx

import (
	"bufio"
	"io"
	"net"
	"net/http"
)

// recorder observes the status and the attached error of one response.
// It never alters what is written.
//
// Handlers see the optional interfaces of the writer underneath:
// http.Flusher and io.ReaderFrom always (both degrade to plain writes),
// http.Hijacker only when the underlying writer hijacks (see newRecorder).
type recorder struct {
	http.ResponseWriter

	code     int
	wrote    bool
	err      error
	reported bool
}

func (rec *recorder) WriteHeader(code int) {
	// 1xx responses other than 101 are interim and do not fix the status.
	if !rec.wrote && (code < 100 || code > 199 || code == http.StatusSwitchingProtocols) {
		rec.code = code
		rec.wrote = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(b []byte) (int, error) {
	if !rec.wrote {
		rec.code = http.StatusOK
		rec.wrote = true
	}
	return rec.ResponseWriter.Write(b)
}

func (rec *recorder) ReadFrom(src io.Reader) (int64, error) {
	if !rec.wrote {
		rec.code = http.StatusOK
		rec.wrote = true
	}
	if rf, ok := rec.ResponseWriter.(io.ReaderFrom); ok {
		return rf.ReadFrom(src)
	}
	return io.Copy(rec.ResponseWriter, src)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rec *recorder) Unwrap() http.ResponseWriter { return rec.ResponseWriter }

// Flush keeps streaming handlers working behind the recorder.
func (rec *recorder) Flush() {
	if !rec.wrote {
		rec.code = http.StatusOK
		rec.wrote = true
	}
	_ = http.NewResponseController(rec.ResponseWriter).Flush()
}

// status is the response status; net/http sends 200 when nothing was
// written.
func (rec *recorder) status() int {
	if !rec.wrote {
		return http.StatusOK
	}
	return rec.code
}

// hijackRecorder is a recorder over a writer that supports hijacking.
type hijackRecorder struct {
	*recorder
}

// Hijack hands the connection over. A hijacked response counts as written
// with 101; what goes over the raw connection is not observed.
func (h hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	conn, rw, err := http.NewResponseController(h.ResponseWriter).Hijack()
	if err == nil && !h.wrote {
		h.code = http.StatusSwitchingProtocols
		h.wrote = true
	}
	return conn, rw, err
}

// newRecorder wraps w and returns the recorder together with the writer to
// hand to the handler.
func newRecorder(w http.ResponseWriter) (*recorder, http.ResponseWriter) {
	rec := &recorder{ResponseWriter: w}
	if _, ok := w.(http.Hijacker); ok {
		return rec, hijackRecorder{rec}
	}
	return rec, rec
}

// findRecorder walks the writer chain through Unwrap.
func findRecorder(w http.ResponseWriter) *recorder {
	for w != nil {
		switch v := w.(type) {
		case *recorder:
			return v
		case hijackRecorder:
			return v.recorder
		}
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			return nil
		}
		w = u.Unwrap()
	}
	return nil
}

// Attach records err as the cause of the response being written to w.
// A Middleware reports it if the response ends with a 5xx status.
//
// Attach reports false when no Middleware is installed on w. The last
// attached error wins.
func Attach(w http.ResponseWriter, err error) bool {
	rec := findRecorder(w)
	if rec == nil {
		return false
	}
	rec.err = err
	return true
}

// Attached returns the error attached to w, if any.
func Attached(w http.ResponseWriter) error {
	if rec := findRecorder(w); rec != nil {
		return rec.err
	}
	return nil
}
