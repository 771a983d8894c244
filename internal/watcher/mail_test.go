package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMailIDRequiresNumericSuffix(t *testing.T) {
	id, ok := ParseMailID("Persistent.Mail.123")
	assert.True(t, ok)
	assert.Equal(t, "123", id)

	_, ok = ParseMailID("Persistent.Mail.")
	assert.False(t, ok)

	_, ok = ParseMailID("Persistent.Mail.123a")
	assert.False(t, ok)

	_, ok = ParseMailID("Other.Mail.123")
	assert.False(t, ok)
}

func TestFileNameForUploadRejectsEmptyBasename(t *testing.T) {
	name, ok := FileNameForUpload("/tmp/Persistent.Mail.123")
	assert.True(t, ok)
	assert.Equal(t, "Persistent.Mail.123", name)

	_, ok = FileNameForUpload("/")
	assert.False(t, ok)
}
