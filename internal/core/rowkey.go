package core

import "sort"

// Tags is a set of tag key/value pairs attached to a metric.
type Tags map[string]string

// SortedKeys returns the tag keys in ascending order, the iteration
// order the row-key codec and the split-index writer both require.
func (t Tags) SortedKeys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether t and other contain exactly the same pairs.
func (t Tags) Equal(other Tags) bool {
	if len(t) != len(other) {
		return false
	}
	for k, v := range t {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// RowKey is the logical write key: (metric_name, row_time, data_type,
// tags). row_time is already floored to the write-row width; two keys
// are equal iff all four fields are equal.
type RowKey struct {
	MetricName string
	RowTime    int64
	DataType   string
	Tags       Tags
}

// Equal compares two row keys field-by-field.
func (k RowKey) Equal(other RowKey) bool {
	return k.MetricName == other.MetricName &&
		k.RowTime == other.RowTime &&
		k.DataType == other.DataType &&
		k.Tags.Equal(other.Tags)
}

// Less orders keys by row_time ascending, then data_type, then
// metric_name, then tag-map entries — the comparison the query runner
// uses to batch candidate keys (§4.1, §4.7).
func (k RowKey) Less(other RowKey) bool {
	if k.RowTime != other.RowTime {
		return k.RowTime < other.RowTime
	}
	if k.DataType != other.DataType {
		return k.DataType < other.DataType
	}
	if k.MetricName != other.MetricName {
		return k.MetricName < other.MetricName
	}
	return compareTags(k.Tags, other.Tags)
}

func compareTags(a, b Tags) bool {
	ak, bk := a.SortedKeys(), b.SortedKeys()
	for i := 0; i < len(ak) && i < len(bk); i++ {
		if ak[i] != bk[i] {
			return ak[i] < bk[i]
		}
		if a[ak[i]] != b[bk[i]] {
			return a[ak[i]] < b[bk[i]]
		}
	}
	return len(ak) < len(bk)
}
