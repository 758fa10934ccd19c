package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate(PrefixBook)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixBook, PrefixPricing, PrefixPublisher, PrefixTemplate} {
		id, err := Generate(prefix)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, prefix+"-"), "ID %s should start with %s-", id, prefix)
		// 21-char nanoid plus prefix and separator.
		assert.Len(t, id, len(prefix)+1+21)
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustGenerate(PrefixTemplate)
		assert.NotEmpty(t, id)
	})
}
