package core

import "fmt"

// maxOffset is the largest offset the 31 usable bits of a column name
// can carry: a row may span at most 2^31 units of timestamp
// resolution (§4.2).
const maxOffset = int64(1) << 31

// EncodeColumn packs (timestamp - rowTime, typeFlag) into the 32-bit
// clustering column name used by the data_points table.
//
// typeFlag is 0 for integer-typed legacy points and 1 for
// floating-point legacy points; every non-legacy data type also packs
// 0, since the type is carried by the row key rather than the column.
func EncodeColumn(rowTime, timestamp int64, isLongLegacy bool) (uint32, error) {
	offset := timestamp - rowTime
	if offset < 0 || offset >= maxOffset {
		return 0, NewDatastoreError(fmt.Sprintf("column offset %d out of range [0, %d)", offset, maxOffset), nil)
	}
	var typeFlag uint32
	if !isLongLegacy {
		typeFlag = 1
	}
	return uint32(offset)<<1 | typeFlag, nil
}

// DecodeColumn unpacks a column name into the timestamp (rowTime plus
// the recovered offset) and the legacy is-long flag. The flag is only
// meaningful when the row's data_type indicates the legacy family.
func DecodeColumn(rowTime int64, column uint32) (timestamp int64, isLongLegacy bool) {
	offset := int64(column >> 1)
	isLongLegacy = column&1 == 0
	return rowTime + offset, isLongLegacy
}
