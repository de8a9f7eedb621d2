package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptFirstSightOnly(t *testing.T) {
	s := NewSeenURLSet()

	assert.True(t, s.Accept("https://img.test/a.jpg"))
	assert.False(t, s.Accept("https://img.test/a.jpg"))
	assert.False(t, s.Accept("https://img.test/a.jpg"))
	assert.Equal(t, 1, s.Len())
}

func TestAcceptIsExactStringEquality(t *testing.T) {
	s := NewSeenURLSet()

	variants := []string{
		"https://img.test/a.jpg",
		"HTTPS://IMG.TEST/a.jpg",
		"https://img.test/a.jpg/",
		"https://img.test/a.jpg?x=1",
		"https://img.test/A.jpg",
	}
	for _, u := range variants {
		assert.True(t, s.Accept(u), "expected %s to be treated as new", u)
	}
	assert.Equal(t, len(variants), s.Len())
}

func TestRejectHasNoSideEffect(t *testing.T) {
	s := NewSeenURLSet()
	s.Accept("a")
	s.Accept("b")
	s.Accept("a")

	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Accept("b"))
	assert.True(t, s.Accept("c"))
}
