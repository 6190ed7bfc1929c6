package store

import (
	"encoding/binary"

	"github.com/lumen-ui/state-core/buffer"
	"github.com/pkg/errors"
)

// Frame encodes state into self-describing uvarint length-prefixed key and
// payload chunks, in map iteration order. Explicit lengths keep arbitrary
// binary payloads unambiguous; the order is not a compatibility guarantee.
// The caller owns the returned writer and must release it.
func Frame(state map[string][]byte) *buffer.Writer {
	w := buffer.Acquire()
	var scratch [binary.MaxVarintLen64]byte
	for key, payload := range state {
		n := binary.PutUvarint(scratch[:], uint64(len(key)))
		_, _ = w.Write(scratch[:n])
		_, _ = w.WriteString(key)
		n = binary.PutUvarint(scratch[:], uint64(len(payload)))
		_, _ = w.Write(scratch[:n])
		_, _ = w.Write(payload)
	}
	return w
}

// Unframe is the inverse of Frame. Payloads are copied out of data, so the
// result stays valid after the caller reuses the input memory.
func Unframe(data []byte) (map[string][]byte, error) {
	state := map[string][]byte{}
	for len(data) > 0 {
		key, rest, err := readChunk(data)
		if err != nil {
			return nil, errors.WithMessage(err, "bad key chunk")
		}
		value, rest, err := readChunk(rest)
		if err != nil {
			return nil, errors.WithMessagef(err, "bad payload chunk for key %q", key)
		}
		payload := make([]byte, len(value))
		copy(payload, value)
		state[string(key)] = payload
		data = rest
	}
	return state, nil
}

func readChunk(data []byte) ([]byte, []byte, error) {
	length, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, nil, errors.WithMessage(ErrMalformedState, "truncated length prefix")
	}
	data = data[n:]
	if uint64(len(data)) < length {
		return nil, nil, errors.WithMessagef(ErrMalformedState,
			"chunk declares %d bytes but %d remain", length, len(data))
	}
	return data[:length], data[length:], nil
}
