package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNick(t *testing.T) {
	cases := []struct {
		name    string
		nick    string
		wantErr bool
	}{
		{"valid", "alice", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too long", strings.Repeat("a", MaxNickLen+1), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reason := Nick(tc.nick)
			if tc.wantErr {
				assert.NotEmpty(t, reason)
			} else {
				assert.Empty(t, reason)
			}
		})
	}
}

func TestNickControlCharacter(t *testing.T) {
	assert.NotEmpty(t, Nick("ali\x00ce"))
}

func TestRoom(t *testing.T) {
	assert.Empty(t, Room("general"))
	assert.NotEmpty(t, Room(""))
	assert.NotEmpty(t, Room(strings.Repeat("r", MaxRoomLen+1)))
}

func TestIdentity(t *testing.T) {
	assert.Empty(t, Identity("some-opaque-identity-string"))
	assert.NotEmpty(t, Identity(""))
}

func TestContentEmptyAfterTrim(t *testing.T) {
	assert.Equal(t, "empty", Content(""))
	assert.Equal(t, "empty", Content("   \t  "))
}

func TestContentValid(t *testing.T) {
	assert.Empty(t, Content("hello, world"))
}

func TestContentTooLong(t *testing.T) {
	assert.NotEmpty(t, Content(strings.Repeat("x", MaxContentLen+1)))
}

func TestContentControlCharacter(t *testing.T) {
	assert.NotEmpty(t, Content("hello\x01there"))
}

func TestContentAcceptsSurroundingWhitespace(t *testing.T) {
	// Content is not trimmed on success, only checked for emptiness.
	assert.Empty(t, Content("  hello  "))
}
