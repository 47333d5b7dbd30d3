package codec

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"outpost/internal/app/ports"
)

// Zstd stores values as zstd-compressed JSON. Blobs that are not zstd frames
// are read as plain JSON so hand-edited saves still load.
type Zstd struct {
	once sync.Once
	enc  *zstd.Encoder
	dec  *zstd.Decoder
	err  error
}

func NewZstd() *Zstd {
	return &Zstd{}
}

func (z *Zstd) init() {
	z.once.Do(func() {
		z.enc, z.err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if z.err != nil {
			return
		}
		z.dec, z.err = zstd.NewReader(nil)
	})
}

func (z *Zstd) Encode(v any) ([]byte, error) {
	z.init()
	if z.err != nil {
		return nil, z.err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal save: %w", err)
	}
	return z.enc.EncodeAll(raw, nil), nil
}

func (z *Zstd) Decode(blob []byte, v any) error {
	z.init()
	if z.err != nil {
		return z.err
	}
	raw := blob
	if isFrame(blob) {
		out, err := z.dec.DecodeAll(blob, nil)
		if err != nil {
			return fmt.Errorf("%w: decompress: %v", ports.ErrCorruptSave, err)
		}
		raw = out
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: unmarshal: %v", ports.ErrCorruptSave, err)
	}
	return nil
}

var frameMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func isFrame(b []byte) bool {
	if len(b) < len(frameMagic) {
		return false
	}
	for i, c := range frameMagic {
		if b[i] != c {
			return false
		}
	}
	return true
}
