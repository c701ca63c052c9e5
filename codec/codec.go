// Package codec defines value (de)serialization for tagcache.
//
// The cache never hands a caller a reference into its own storage: values
// cross the Encode/Decode boundary on every read and write, so mutating a
// returned value cannot alter what is cached.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
