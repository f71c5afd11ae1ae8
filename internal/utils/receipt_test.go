package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReceipt(t *testing.T) {
	t.Run("Format", func(t *testing.T) {
		r := GenerateReceipt()

		assert.True(t, strings.HasPrefix(r, "receipt_"))
		assert.LessOrEqual(t, len(r), 40)

		parts := strings.Split(strings.TrimPrefix(r, "receipt_"), "-")
		if assert.Len(t, parts, 3) {
			assert.Len(t, parts[0], 8)
			assert.Len(t, parts[1], 6)
			assert.Len(t, parts[2], 4)
		}
	})
}
