package klogger

// SyncWriter owns a Transport and serializes every access to it.
//
// Each Write emits its whole buffer inside a single critical section, so
// bytes from concurrent writers never interleave: if one critical section
// starts before another, all of its bytes reach the device first.
type SyncWriter struct {
	lock SpinLock
	t    Transport
}

// NewSyncWriter takes ownership of t. Nothing else may touch t afterwards.
func NewSyncWriter(t Transport) *SyncWriter {
	return &SyncWriter{t: t}
}

// WithTransport runs body with exclusive access to the writer's Transport
// and returns its result. The lock is released on every exit path,
// including a panic in body.
func WithTransport[R any](w *SyncWriter, body func(Transport) R) R {
	w.lock.Lock()
	defer w.lock.Unlock()
	return body(w.t)
}

// Write emits p atomically with respect to other writers. It always
// reports len(p) bytes written and a nil error.
func (w *SyncWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	for _, b := range p {
		w.t.PutByte(b)
	}
	return len(p), nil
}

// WriteString is Write for a string, without the conversion copy.
func (w *SyncWriter) WriteString(s string) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	for i := 0; i < len(s); i++ {
		w.t.PutByte(s[i])
	}
	return len(s), nil
}
