package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	t.Run("Dispatch In Order", func(t *testing.T) {
		reg := NewRegistry(0)
		var calls []string
		reg.On("loaded", func(args ...any) Result { calls = append(calls, "a"); return Continue })
		reg.On("loaded", func(args ...any) Result { calls = append(calls, "b"); return Continue })

		assert.False(t, reg.Fire("loaded", 1))
		assert.Equal(t, []string{"a", "b"}, calls)
	})

	t.Run("Kinds Are Case Insensitive", func(t *testing.T) {
		reg := NewRegistry(0)
		fired := 0
		reg.On("ConfigsLoaded", func(args ...any) Result { fired++; return Continue })
		reg.Fire("configsloaded")
		assert.Equal(t, 1, fired)
	})

	t.Run("Preempt Stops Dispatch", func(t *testing.T) {
		reg := NewRegistry(0)
		second := false
		reg.On("loaded", func(args ...any) Result { return Preempt })
		reg.On("loaded", func(args ...any) Result { second = true; return Continue })

		assert.True(t, reg.Fire("loaded"))
		assert.False(t, second)
	})

	t.Run("Late Handler Replays", func(t *testing.T) {
		reg := NewRegistry(0)
		reg.Fire("loaded", "first")
		reg.Fire("loaded", "second")

		var seen []any
		reg.On("loaded", func(args ...any) Result { seen = append(seen, args[0]); return Continue })
		assert.Equal(t, []any{"first", "second"}, seen)

		reg.Fire("loaded", "third")
		assert.Equal(t, []any{"first", "second", "third"}, seen)
	})

	t.Run("Stop Ends Replay", func(t *testing.T) {
		reg := NewRegistry(0)
		reg.Fire("loaded", 1)
		reg.Fire("loaded", 2)

		var seen []any
		reg.On("loaded", func(args ...any) Result { seen = append(seen, args[0]); return Stop })
		assert.Equal(t, []any{1}, seen)
	})

	t.Run("Log Is Bounded", func(t *testing.T) {
		reg := NewRegistry(2)
		reg.Fire("loaded", 1)
		reg.Fire("loaded", 2)
		reg.Fire("loaded", 3)

		assert.Equal(t, [][]any{{2}, {3}}, reg.History("loaded"))
	})
}
