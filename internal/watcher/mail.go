package watcher

import (
	"path/filepath"
	"strconv"
	"strings"
)

const persistentMailPrefix = "Persistent.Mail."

// ParseMailID extracts the numeric mail id from a watched filename, if the
// filename follows the "Persistent.Mail.<digits>" convention. It returns
// ("", false) for anything else; callers fall back to the raw filename for
// logging in that case.
func ParseMailID(filename string) (string, bool) {
	rest := strings.TrimPrefix(filename, persistentMailPrefix)
	if rest == filename || rest == "" {
		return "", false
	}
	if _, err := strconv.ParseUint(rest, 10, 64); err != nil {
		return "", false
	}
	return rest, true
}

// FileNameForUpload returns path's basename for use as the upload's
// multipart filename, or ("", false) if the basename is empty.
func FileNameForUpload(path string) (string, bool) {
	name := filepath.Base(path)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", false
	}
	return name, true
}
