package usage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"mindfuel/internal/types"
)

// zstdMagic prefixes every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// maxDecodedBatch bounds the memory a single decoded batch may use.
const maxDecodedBatch = 64 << 20

// Batch is one day of raw usage as exchanged with the usage service and the
// evaluation queue.
type Batch struct {
	Date  string           `json:"date"`
	Usage []types.RawUsage `json:"usage"`
}

// Day parses the batch date.
func (b Batch) Day() (time.Time, error) {
	return types.ParseDate(b.Date)
}

// NewBatch builds a batch for date.
func NewBatch(date time.Time, raw []types.RawUsage) Batch {
	return Batch{Date: types.DayStart(date).Format(types.DateLayout), Usage: raw}
}

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder

	decoderPool = sync.Pool{
		New: func() any {
			d, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(maxDecodedBatch))
			if err != nil {
				// Only fails on invalid options.
				panic(fmt.Sprintf("failed to create zstd decoder: %v", err))
			}
			return d
		},
	}
)

func zstdEncoder() *zstd.Encoder {
	encoderOnce.Do(func() {
		var err error
		encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder: %v", err))
		}
	})
	return encoder
}

// EncodeBatch serializes b as JSON, zstd-compressed when compress is set.
func EncodeBatch(b Batch, compress bool) ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("usage: encode batch: %w", err)
	}
	if !compress {
		return data, nil
	}
	return zstdEncoder().EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// IsCompressed reports whether data starts with a zstd frame.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// DecodeBatch parses a JSON batch, decompressing it first if it is a zstd
// frame. Malformed input yields a validation AppError.
func DecodeBatch(data []byte) (Batch, error) {
	if IsCompressed(data) {
		d := decoderPool.Get().(*zstd.Decoder)
		plain, err := d.DecodeAll(data, nil)
		decoderPool.Put(d)
		if err != nil {
			return Batch{}, types.NewAppError(types.ErrCodeValidationInvalidJSON, "batch is not valid zstd", err)
		}
		data = plain
	}

	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return Batch{}, types.NewAppError(types.ErrCodeValidationInvalidJSON, "batch is not valid JSON", err)
	}
	if _, err := b.Day(); err != nil {
		return Batch{}, err
	}
	return b, nil
}
