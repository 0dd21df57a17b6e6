package langerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesOnKindOnly(t *testing.T) {
	err := DuplicateName("asset", "Host")
	require.True(t, errors.Is(err, New(KindDuplicateName, "")))
	require.False(t, errors.Is(err, New(KindUnknownReference, "")))
}

func TestErrorUnwrapExposesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindSchemaViolation, "could not read", cause)
	require.ErrorIs(t, err, cause)
}

func TestUnknownReferenceWithSuggestionAttachesCloseMatch(t *testing.T) {
	err := UnknownReferenceWithSuggestion("asset", "Hot", []string{"Host", "App", "Network"})
	require.Equal(t, "Host", err.Suggestion)
}

func TestUnknownReferenceWithSuggestionLeavesEmptyWhenNothingClose(t *testing.T) {
	err := UnknownReferenceWithSuggestion("asset", "Zzzzzzzzzzz", []string{"Host", "App"})
	require.Equal(t, "", err.Suggestion)
}

func TestSuggestHandlesEmptyKnownSet(t *testing.T) {
	require.Equal(t, "", Suggest("anything", nil))
}
