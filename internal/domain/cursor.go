package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeCursor builds the keyset cursor shared by all backends:
// base64(sort_value + "|" + id).
func EncodeCursor(sortValue, id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(sortValue + "|" + id))
}

// DecodeCursor splits a cursor produced by EncodeCursor. Sort values may
// contain "|", so the id is taken after the last separator.
func DecodeCursor(cursor string) (sortValue, id string, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", "", fmt.Errorf("decode cursor: %w", err)
	}
	s := string(raw)
	i := strings.LastIndex(s, "|")
	if i < 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("decode cursor: malformed")
	}
	return s[:i], s[i+1:], nil
}

// SortValue returns the value of field f used for keyset ordering.
func (c Course) SortValue(f Field) string {
	switch f {
	case FieldInstructor:
		return c.Instructor
	case FieldCategory:
		return c.Category
	case FieldGrade:
		return c.Grade
	case FieldTerm:
		return c.Term
	case FieldDay:
		return string(c.Schedule.Day)
	case FieldID:
		return c.ID
	default:
		return c.Title
	}
}
