// Package pathutil maps device paths to S3 object keys.
package pathutil

import (
	"path"
	"strings"
)

// Normalize cleans a device path into key form: forward slashes, no leading
// or trailing slash. The device root normalizes to "".
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.Trim(p, "/")
}

// NormalizePrefix normalizes a key prefix. "." and "" both mean no prefix.
func NormalizePrefix(prefix string) string {
	if prefix == "." {
		return ""
	}
	return Normalize(prefix)
}

// Key joins prefix with the device path p. The root of an unprefixed device
// is "".
func Key(prefix, p string) string {
	name := Normalize(p)
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + "/" + name
	}
}

// DirKey returns the listing prefix and directory marker key for key.
func DirKey(key string) string {
	if key == "" || strings.HasSuffix(key, "/") {
		return key
	}
	return key + "/"
}

// Parent returns the device path of the parent of p.
func Parent(p string) string {
	return path.Dir(path.Clean("/" + p))
}

// ChildName returns the entry name of objectKey relative to the listing
// prefix dirKey, and whether it names a subdirectory. An empty name means
// objectKey is the directory's own marker.
func ChildName(dirKey, objectKey string) (string, bool) {
	rel := strings.TrimPrefix(objectKey, dirKey)
	isDir := strings.HasSuffix(rel, "/")
	return strings.TrimSuffix(rel, "/"), isDir
}
