package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("tagcache: corrupt entry")
	magic4     = [...]byte{'T', 'A', 'G', 'C'}
)

// header: magic(4) | ver(1) | expiresAt unix-nano (i64 be) | vlen(u32 be)
const hdrLen = 4 + 1 + 8 + 4

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames payload with its absolute expiry: magic | ver | expiresAt | vlen | payload.
func Encode(expiresAt time.Time, payload []byte) []byte {
	out := make([]byte, hdrLen+len(payload))
	copy(out, magic4[:])
	out[4] = version
	binary.BigEndian.PutUint64(out[5:13], uint64(expiresAt.UnixNano()))
	binary.BigEndian.PutUint32(out[13:17], uint32(len(payload)))
	copy(out[hdrLen:], payload)
	return out
}

// Decode validates the frame strictly (magic, version, exact length; trailing
// bytes are rejected) and returns the expiry and the payload slice.
func Decode(b []byte) (expiresAt time.Time, payload []byte, err error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version {
		return time.Time{}, nil, ErrCorrupt
	}
	nanos := int64(binary.BigEndian.Uint64(b[5:13]))
	vlen := int(binary.BigEndian.Uint32(b[13:17]))
	if vlen < 0 || vlen != len(b)-hdrLen {
		return time.Time{}, nil, ErrCorrupt
	}
	return time.Unix(0, nanos), b[hdrLen : hdrLen+vlen], nil
}
