package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

func init() {
	RegisterCodec("long", func() ValueCodec { return &longCodec{} })
	RegisterCodec("double", func() ValueCodec { return &doubleCodec{} })
}

// longCodec encodes the legacy 64-bit signed integer data type. It
// packs the type-flag bit to 0 (§4.2).
type longCodec struct{}

func (longCodec) DataType() string  { return "long" }
func (longCodec) IsLongLegacy() bool { return true }

func (longCodec) Encode(value any) ([]byte, error) {
	v, ok := toInt64(value)
	if !ok {
		return nil, fmt.Errorf("long codec: value %v is not an integer", value)
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b, nil
}

func (longCodec) Decode(b []byte) (any, error) {
	if len(b) != 8 {
		return nil, fmt.Errorf("long codec: expected 8 bytes, got %d", len(b))
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// doubleCodec encodes the legacy 64-bit floating point data type. It
// packs the type-flag bit to 1 (§4.2).
type doubleCodec struct{}

func (doubleCodec) DataType() string   { return "double" }
func (doubleCodec) IsLongLegacy() bool { return false }

func (doubleCodec) Encode(value any) ([]byte, error) {
	v, ok := toFloat64(value)
	if !ok {
		return nil, fmt.Errorf("double codec: value %v is not a float", value)
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return b, nil
}

func (doubleCodec) Decode(b []byte) (any, error) {
	if len(b) != 8 {
		return nil, fmt.Errorf("double codec: expected 8 bytes, got %d", len(b))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	}
	return 0, false
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}
