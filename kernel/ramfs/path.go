package ramfs

import "strings"

// splitPath breaks an absolute path into its segments. Empty segments are
// dropped, so leading, trailing and repeated separators are insignificant.
// "." and ".." are ordinary names at this layer.
func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}
