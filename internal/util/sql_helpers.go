package util

import "database/sql"

// StringToNullString treats "" as NULL. Oracle stores empty VARCHAR2 values as NULL anyway.
func StringToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// NullStringToString maps NULL back to "".
func NullStringToString(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
