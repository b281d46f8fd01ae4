package session

import "github.com/gin-gonic/gin"

// responseWriter runs beforeWrite once, before anything reaches the client, so the
// session cookie can still be added to the headers.
type responseWriter struct {
	gin.ResponseWriter
	beforeWrite func()
	done        bool
}

func (w *responseWriter) runBeforeWrite() {
	if w.done {
		return
	}
	w.done = true
	if w.ResponseWriter.Written() {
		return
	}
	w.beforeWrite()
}

func (w *responseWriter) WriteHeaderNow() {
	w.runBeforeWrite()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.runBeforeWrite()
	return w.ResponseWriter.Write(data)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.runBeforeWrite()
	return w.ResponseWriter.WriteString(s)
}

func (w *responseWriter) Flush() {
	w.runBeforeWrite()
	w.ResponseWriter.Flush()
}
