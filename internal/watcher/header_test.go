package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validMailHeader() []byte {
	buf := make([]byte, 32)
	buf[0] = 0xFF
	buf[9] = 0x05
	buf[10] = 0x04
	buf[11], buf[12], buf[13], buf[14] = 9, 0, 0, 0
	copy(buf[15:24], "mailScene")
	return buf
}

func TestHasMailHeaderAcceptsValidPrefix(t *testing.T) {
	assert.True(t, HasMailHeader(validMailHeader()))
}

func TestHasMailHeaderRejectsShortBuffer(t *testing.T) {
	assert.False(t, HasMailHeader(make([]byte, 20)))
}

func TestHasMailHeaderRejectsWrongMagicByte(t *testing.T) {
	buf := validMailHeader()
	buf[0] = 0x00
	assert.False(t, HasMailHeader(buf))
}

func TestHasMailHeaderRejectsWrongMarker(t *testing.T) {
	buf := validMailHeader()
	buf[9] = 0x00
	assert.False(t, HasMailHeader(buf))
}

func TestHasMailHeaderRejectsWrongLength(t *testing.T) {
	buf := validMailHeader()
	buf[11] = 10
	assert.False(t, HasMailHeader(buf))
}

func TestHasMailHeaderRejectsWrongScene(t *testing.T) {
	buf := validMailHeader()
	copy(buf[15:24], "wrongScen")
	assert.False(t, HasMailHeader(buf))
}
