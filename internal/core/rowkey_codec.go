package core

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// Separator and terminator bytes reserved by the row-key wire format.
// A metric name, data type, tag key, or tag value containing one of
// these is rejected: it would make the serialized key ambiguous to
// decode.
const (
	sepTerminator byte = 0x00
	sepTagEquals  byte = '='
	sepTagColon   byte = ':'
)

// EncodeRowKey serializes a RowKey to its canonical byte form:
//
//	metric_name 0x00 row_time(int64 BE) data_type 0x00
//	(tag_key '=' tag_value ':')*  -- tags in ascending key order
//
// It fails with a MalformedKey EngineError if metric_name, data_type,
// or any tag key/value contains a reserved byte.
func EncodeRowKey(k RowKey) ([]byte, error) {
	if err := checkNoReserved("metric_name", k.MetricName); err != nil {
		return nil, err
	}
	if err := checkNoReserved("data_type", k.DataType); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(k.MetricName)
	buf.WriteByte(sepTerminator)

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(k.RowTime))
	buf.Write(ts[:])

	buf.WriteString(k.DataType)
	buf.WriteByte(sepTerminator)

	for _, tagKey := range k.Tags.SortedKeys() {
		tagVal := k.Tags[tagKey]
		if err := checkNoReserved("tag key", tagKey); err != nil {
			return nil, err
		}
		if err := checkNoReserved("tag value", tagVal); err != nil {
			return nil, err
		}
		buf.WriteString(tagKey)
		buf.WriteByte(sepTagEquals)
		buf.WriteString(tagVal)
		buf.WriteByte(sepTagColon)
	}

	return buf.Bytes(), nil
}

func checkNoReserved(field, value string) error {
	if strings.IndexByte(value, sepTerminator) >= 0 ||
		strings.IndexByte(value, sepTagEquals) >= 0 ||
		strings.IndexByte(value, sepTagColon) >= 0 {
		return NewMalformedKey(fmt.Sprintf("%s %q contains a reserved separator byte", field, value), nil)
	}
	return nil
}

// DecodeRowKey is the inverse of EncodeRowKey.
func DecodeRowKey(b []byte) (RowKey, error) {
	metricEnd := bytes.IndexByte(b, sepTerminator)
	if metricEnd < 0 {
		return RowKey{}, NewMalformedKey("missing metric_name terminator", nil)
	}
	metricName := string(b[:metricEnd])
	rest := b[metricEnd+1:]

	if len(rest) < 8 {
		return RowKey{}, NewMalformedKey("truncated row_time", nil)
	}
	rowTime := int64(binary.BigEndian.Uint64(rest[:8]))
	rest = rest[8:]

	typeEnd := bytes.IndexByte(rest, sepTerminator)
	if typeEnd < 0 {
		return RowKey{}, NewMalformedKey("missing data_type terminator", nil)
	}
	dataType := string(rest[:typeEnd])
	rest = rest[typeEnd+1:]

	tags := Tags{}
	for len(rest) > 0 {
		eq := bytes.IndexByte(rest, sepTagEquals)
		if eq < 0 {
			return RowKey{}, NewMalformedKey("malformed tag: missing '='", nil)
		}
		tagKey := string(rest[:eq])
		rest = rest[eq+1:]

		colon := bytes.IndexByte(rest, sepTagColon)
		if colon < 0 {
			return RowKey{}, NewMalformedKey("malformed tag: missing ':'", nil)
		}
		tags[tagKey] = string(rest[:colon])
		rest = rest[colon+1:]
	}

	return RowKey{
		MetricName: metricName,
		RowTime:    rowTime,
		DataType:   dataType,
		Tags:       tags,
	}, nil
}
