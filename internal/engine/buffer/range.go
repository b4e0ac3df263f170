package buffer

// checkIndex validates 0 <= index < length.
func checkIndex(op string, index, length int) error {
	if index < 0 || index >= length {
		return indexError(op, index, length)
	}
	return nil
}

// checkOffset validates 0 <= offset <= length.
func checkOffset(op string, offset, length int) error {
	if offset < 0 || offset > length {
		return indexError(op, offset, length)
	}
	return nil
}

// checkRange validates 0 <= start <= end <= length.
func checkRange(op string, start, end, length int) error {
	if start < 0 || start > end || end > length {
		return rangeError(op, start, end, length)
	}
	return nil
}

// clampedRange applies the delete/replace rule: end is clamped to length,
// then 0 <= start <= end and start <= length must hold.
func clampedRange(op string, start, end, length int) (int, error) {
	if end > length {
		end = length
	}
	if start < 0 || start > end {
		return 0, rangeError(op, start, end, length)
	}
	return end, nil
}
