package utils

import (
	"fmt"
	"strconv"
)

// Int64ToStr converts an int64 to its string representation.
func Int64ToStr(num int64) string {
	return strconv.FormatInt(num, 10)
}

// StrToInt64 converts a string to an int64.
func StrToInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// ParseID reads a database id from a path segment. Zero and negative values are rejected.
func ParseID(s string) (int64, error) {
	id, err := StrToInt64(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%q is not a valid id", s)
	}
	return id, nil
}
