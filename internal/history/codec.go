package history

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Shared coders; both are safe for concurrent EncodeAll/DecodeAll use.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

// compressJSON marshals v and compresses the result.
func compressJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// decompress reverses compressJSON, returning the raw JSON.
func decompress(blob []byte) (json.RawMessage, error) {
	raw, err := decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	return raw, nil
}
