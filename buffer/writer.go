package buffer

import "github.com/valyala/bytebufferpool"

//payload sizes differ a lot from other buffer users in the host process,
//so keep a dedicated calibrated pool
var pool bytebufferpool.Pool

// Writer accumulates a serialized payload in pooled memory. It must be
// released exactly when its bytes are no longer referenced; Release is
// idempotent, any other use after Release is a caller bug.
type Writer struct {
	bb       *bytebufferpool.ByteBuffer
	released bool
}

// Acquire takes a Writer backed by pooled memory.
func Acquire() *Writer {
	return &Writer{bb: pool.Get()}
}

func (w *Writer) Write(p []byte) (int, error) {
	return w.bb.Write(p)
}

func (w *Writer) WriteString(s string) (int, error) {
	return w.bb.WriteString(s)
}

func (w *Writer) WriteByte(b byte) error {
	return w.bb.WriteByte(b)
}

// Bytes returns a read-only view of the accumulated payload, valid until
// Release returns the backing memory to the pool.
func (w *Writer) Bytes() []byte {
	if w.released {
		return nil
	}
	return w.bb.B
}

func (w *Writer) Len() int {
	if w.released {
		return 0
	}
	return len(w.bb.B)
}

// Release returns the backing memory to the pool.
func (w *Writer) Release() {
	if w.released {
		return
	}
	w.released = true
	pool.Put(w.bb)
	w.bb = nil
}
