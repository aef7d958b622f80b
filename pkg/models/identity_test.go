package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemporaryID(t *testing.T) {
	id := NewTemporaryID()

	assert.True(t, id.IsTemporary())
	assert.False(t, id.IsDurable())
	assert.False(t, id.IsZero())
	assert.NotEmpty(t, id.Value())
}

func TestNewTemporaryID_UniqueWithinSession(t *testing.T) {
	seen := make(map[string]bool)

	for range 100 {
		id := NewTemporaryID()
		assert.False(t, seen[id.Value()], "temporary id repeated: %s", id.Value())
		seen[id.Value()] = true
	}
}

func TestDurableID(t *testing.T) {
	id := DurableID("post-42")

	assert.True(t, id.IsDurable())
	assert.False(t, id.IsTemporary())
	assert.Equal(t, "post-42", id.Value())
}

func TestItemID_Equal(t *testing.T) {
	durable := DurableID("abc")
	temp := NewTemporaryID()

	assert.True(t, durable.Equal(DurableID("abc")))
	assert.False(t, durable.Equal(DurableID("other")))
	assert.True(t, temp.Equal(temp))

	// Same raw value but different kinds must not compare equal.
	sameValue := ItemID{kind: idKindTemporary, value: "abc"}
	assert.False(t, durable.Equal(sameValue))
}

func TestItemID_JSONRoundTrip(t *testing.T) {
	for _, id := range []ItemID{NewTemporaryID(), DurableID("post-42")} {
		data, err := json.Marshal(id)
		require.NoError(t, err)

		var decoded ItemID

		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, id.Equal(decoded))
	}
}

func TestParseItemID(t *testing.T) {
	id, err := ParseItemID("tmp:token-1")
	require.NoError(t, err)
	assert.True(t, id.IsTemporary())
	assert.Equal(t, "token-1", id.Value())

	id, err = ParseItemID("srv:post-42")
	require.NoError(t, err)
	assert.True(t, id.IsDurable())
	assert.Equal(t, "post-42", id.Value())

	// Unprefixed values come from gateway responses and are durable.
	id, err = ParseItemID("post-42")
	require.NoError(t, err)
	assert.True(t, id.IsDurable())

	_, err = ParseItemID("")
	assert.ErrorIs(t, err, ErrInvalidItemID)
}
