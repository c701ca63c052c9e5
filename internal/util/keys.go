package util

import "strings"

// NamespaceOf extracts the stats namespace from a user key: everything before
// the first separator, or the whole key when the separator is absent.
// "user_42" with sep "_" => "user"; "health" => "health".
func NamespaceOf(key, sep string) string {
	if i := strings.Index(key, sep); i > 0 {
		return key[:i]
	}
	return key
}
