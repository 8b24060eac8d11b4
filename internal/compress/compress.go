package compress

import "fmt"

// Compress encodes opaque payloads before they leave the process, eg.
// graph snapshots going to the cache.
type Compress interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

var (
	_ Compress = Nop{}
	_ Compress = GZip{}
	_ Compress = Brotli{}
	_ Compress = LZ4{}
)

// ByName returns the codec registered under name. Known names are nop,
// gzip, brotli and lz4; empty picks nop.
func ByName(name string) (Compress, error) {
	switch name {
	case "", "nop":
		return NewNop(), nil
	case "gzip":
		return NewGZip(), nil
	case "brotli":
		return NewBrotli(), nil
	case "lz4":
		return NewLZ4(), nil
	}
	return nil, fmt.Errorf("unknown compression codec %q", name)
}

// Nop passes payloads through unchanged.
type Nop struct {
}

func NewNop() Nop {
	return Nop{}
}

func (n Nop) Encode(data []byte) ([]byte, error) {
	return data, nil
}

func (n Nop) Decode(data []byte) ([]byte, error) {
	return data, nil
}
