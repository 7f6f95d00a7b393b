package buffer

import "bytes"

// End as a right edge selects the last byte of the content; as an insert
// position it appends.
const End = -1

// window resolves an inclusive [left, right] pair against the current size
// and returns the half-open byte range [lo, hi).
func (b *StringBuffer) window(op string, left, right int) (lo, hi int, err error) {
	size := b.hdr.size
	if right == End {
		right = size - 1
	}
	switch {
	case left < 0 || right < End:
		return 0, 0, newError(op, KindInvalidArgument, ReasonBadOffset)
	case right >= size:
		return 0, 0, newError(op, KindRange, ReasonRightBeyondSize)
	case left > right:
		return 0, 0, newError(op, KindRange, ReasonLeftAfterRight)
	}
	return left, right + 1, nil
}

// normalizeItems applies the (items, count) convention: count > 0 takes
// exactly count bytes, count == 0 takes items up to its first 0 byte or the
// whole slice when there is none. The result is never empty.
func normalizeItems(op string, items []byte, count int) ([]byte, error) {
	if items == nil {
		return nil, newError(op, KindInvalidArgument, ReasonNullItems)
	}
	switch {
	case count < 0:
		return nil, newError(op, KindInvalidArgument, ReasonZeroCount)
	case count > len(items):
		return nil, newError(op, KindRange, ReasonCountTooLarge)
	case count == 0:
		if i := bytes.IndexByte(items, 0); i >= 0 {
			items = items[:i]
		}
	default:
		items = items[:count]
	}
	if len(items) == 0 {
		return nil, newError(op, KindInvalidArgument, ReasonZeroCount)
	}
	return items, nil
}

// normalizeReplacement is normalizeItems for a replacement text, which may
// be empty. A nil slice is an empty replacement.
func normalizeReplacement(op string, items []byte, count int) ([]byte, error) {
	if len(items) == 0 && count == 0 {
		return nil, nil
	}
	if items == nil {
		return nil, newError(op, KindInvalidArgument, ReasonNullItems)
	}
	switch {
	case count < 0:
		return nil, newError(op, KindInvalidArgument, ReasonZeroCount)
	case count > len(items):
		return nil, newError(op, KindRange, ReasonCountTooLarge)
	case count == 0:
		if i := bytes.IndexByte(items, 0); i >= 0 {
			items = items[:i]
		}
	default:
		items = items[:count]
	}
	return items, nil
}
