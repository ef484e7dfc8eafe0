package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"a", "b"}, "b"))
	assert.False(t, Contains([]string{"a", "b"}, "c"))
	assert.True(t, Contains([]int64{1, 2}, 2))
}

func TestCompactStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, CompactStrings([]string{"a", "", "c", ""}))
	assert.Empty(t, CompactStrings(nil))
}

func TestUniq(t *testing.T) {
	assert.Equal(t, []string{"05a", "05b"}, Uniq([]string{"05a", "05b", "05a"}))
}
