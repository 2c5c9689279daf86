package utils

import "strconv"

// Int64ToStr converts an int64 to its string representation.
func Int64ToStr(num int64) string {
	return strconv.FormatInt(num, 10)
}

// StrToInt64 converts a string to an int64.
func StrToInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// Int64Ptr returns a pointer to the given int64. Handy for optional FK fields.
func Int64Ptr(n int64) *int64 {
	return &n
}

// StrPtr returns a pointer to the given string.
func StrPtr(s string) *string {
	return &s
}
