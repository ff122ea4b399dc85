package twofactor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/authkit/pkg/twofactor"
)

func TestCodeEntryType(t *testing.T) {
	t.Parallel()

	t.Run("digits fill consecutive slots", func(t *testing.T) {
		t.Parallel()
		var e twofactor.CodeEntry
		for _, r := range "123456" {
			e.Type(r)
		}
		assert.Equal(t, "123456", e.Code())
		assert.True(t, e.Complete())
		assert.Equal(t, 5, e.Focus(), "focus stays on the last slot once full")
	})

	t.Run("non-digit input is dropped", func(t *testing.T) {
		t.Parallel()
		var e twofactor.CodeEntry
		for _, r := range "1a2-3 4x5!6" {
			e.Type(r)
		}
		assert.Equal(t, "123456", e.Code())
	})

	t.Run("typing past the last slot overwrites it", func(t *testing.T) {
		t.Parallel()
		var e twofactor.CodeEntry
		for _, r := range "1234567" {
			e.Type(r)
		}
		assert.Equal(t, "123457", e.Code())
	})
}

func TestCodeEntryPaste(t *testing.T) {
	t.Parallel()

	t.Run("full code from the first slot", func(t *testing.T) {
		t.Parallel()
		var e twofactor.CodeEntry
		e.Paste("987654")
		assert.Equal(t, "987654", e.Code())
		assert.True(t, e.Complete())
		assert.Equal(t, 5, e.Focus())
	})

	t.Run("filters non-digit characters", func(t *testing.T) {
		t.Parallel()
		var e twofactor.CodeEntry
		e.Paste("12-34 56")
		assert.Equal(t, "123456", e.Code())
	})

	t.Run("short paste fills from focus without panic", func(t *testing.T) {
		t.Parallel()
		var e twofactor.CodeEntry
		e.Type('1')
		e.Type('2')
		e.Paste("34")
		assert.Equal(t, "1234", e.Code())
		assert.Equal(t, 3, e.Focus(), "focus lands on the last filled slot")
		assert.False(t, e.Complete())
	})

	t.Run("overflow is truncated at the last slot", func(t *testing.T) {
		t.Parallel()
		var e twofactor.CodeEntry
		e.Paste("1234567890")
		assert.Equal(t, "123456", e.Code())
	})

	t.Run("paste without digits changes nothing", func(t *testing.T) {
		t.Parallel()
		var e twofactor.CodeEntry
		e.Type('7')
		e.Paste("abc!")
		assert.Equal(t, "7", e.Code())
		assert.Equal(t, 1, e.Focus())
	})
}

func TestCodeEntryBackspace(t *testing.T) {
	t.Parallel()

	t.Run("clears the focused digit first", func(t *testing.T) {
		t.Parallel()
		var e twofactor.CodeEntry
		e.Paste("123456")
		e.Backspace()
		assert.Equal(t, "12345", e.Code())
		assert.Equal(t, 5, e.Focus())
	})

	t.Run("moves left from an empty slot", func(t *testing.T) {
		t.Parallel()
		var e twofactor.CodeEntry
		e.Type('1')
		e.Type('2')
		e.Backspace()
		assert.Equal(t, "1", e.Code())
		assert.Equal(t, 1, e.Focus())
	})

	t.Run("no-op on an empty buffer", func(t *testing.T) {
		t.Parallel()
		var e twofactor.CodeEntry
		e.Backspace()
		assert.Equal(t, "", e.Code())
		assert.Equal(t, 0, e.Focus())
	})
}

func TestCodeEntryClear(t *testing.T) {
	t.Parallel()

	var e twofactor.CodeEntry
	e.Paste("123456")
	e.Clear()
	assert.Equal(t, "", e.Code())
	assert.Equal(t, 0, e.Focus())
	_, ok := e.Slot(0)
	assert.False(t, ok)
}
