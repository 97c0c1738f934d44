package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siggserrors "github.com/toyz/siggs/pkg/errors"
)

func TestBaseRegistry_Register(t *testing.T) {
	registry := NewBaseRegistry[int]("counter")

	require.NoError(t, registry.Register("b", 2))
	require.NoError(t, registry.Register("a", 1))

	value, ok := registry.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, value)
	assert.True(t, registry.Has("b"))
	assert.False(t, registry.Has("c"))
	assert.Equal(t, []string{"a", "b"}, registry.List())
	assert.Equal(t, 2, registry.Size())
}

func TestBaseRegistry_Rejections(t *testing.T) {
	registry := NewBaseRegistry[int]("counter")
	registry.SetValidator(func(key string, value int, existing map[string]int) error {
		if value < 0 {
			return errors.New("value must not be negative")
		}
		return nil
	})
	require.NoError(t, registry.Register("a", 1))

	tests := []struct {
		name    string
		key     string
		value   int
		message string
	}{
		{name: "empty key", key: "", value: 1, message: "name cannot be empty"},
		{name: "duplicate", key: "a", value: 2, message: "already registered"},
		{name: "validator", key: "b", value: -1, message: "value must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Register(tt.key, tt.value)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.True(t, siggserrors.HasCode(err, siggserrors.RegistrationErrorCode))
		})
	}

	value, _ := registry.Get("a")
	assert.Equal(t, 1, value)
	assert.Equal(t, 1, registry.Size())
}
