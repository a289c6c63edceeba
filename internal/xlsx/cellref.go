package xlsx

// ColumnRef converts a 1-based column index to its alphabetic cell
// reference prefix: 1 -> "A", 26 -> "Z", 27 -> "AA".
func ColumnRef(n int) string {
	if n < 1 {
		return ""
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[i:])
}

// ColumnIndex converts an alphabetic column reference back to its 1-based
// index. Returns 0 for an empty or non-alphabetic reference.
func ColumnIndex(ref string) int {
	n := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			return 0
		}
		n = n*26 + int(c-'A') + 1
	}
	return n
}

// columnPrefix returns the leading letters of a cell reference like "AB12".
func columnPrefix(ref string) string {
	i := 0
	for i < len(ref) && (ref[i] < '0' || ref[i] > '9') {
		i++
	}
	return ref[:i]
}
