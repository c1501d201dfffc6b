package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "short text", WrapString("  short   text "))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"normal", "tight"}, SplitList("normal, ,tight,"))
	assert.Nil(t, SplitList(""))
}
