// Package vault holds the backends that store exported snapshots.
package vault

import (
	"fmt"
	"path"
	"strings"
)

// checkKey rejects keys that could escape a vault's namespace.
func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) || path.Clean(key) != key {
		return fmt.Errorf("invalid vault key %q", key)
	}
	for seg := range strings.SplitSeq(key, "/") {
		if seg == ".." || seg == "." {
			return fmt.Errorf("invalid vault key %q", key)
		}
	}
	return nil
}
