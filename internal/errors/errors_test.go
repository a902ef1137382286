package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeUserNotFound, "user not found")
	other := New(CodeUserNotFound, "different message, same code")

	assert.ErrorIs(t, other, sentinel)
	assert.NotErrorIs(t, New(CodeServerNotFound, "server not found"), sentinel)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("boom")
	wrapped := Wrap(CodeInvalidInput, "invalid registration input", cause)

	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.Equal(t, "invalid registration input", wrapped.Error())
}

func TestGetCodeOnForeignError(t *testing.T) {
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeUnknown, GetCode(nil))
}

func TestKinds(t *testing.T) {
	tests := []struct {
		code Code
		kind Kind
	}{
		{CodeNotAuthenticated, KindNotAuthenticated},
		{CodeUserNotFound, KindNotFound},
		{CodeChannelNotFound, KindNotFound},
		{CodeMissingCapability, KindUnauthorized},
		{CodeOwnerOnly, KindUnauthorized},
		{CodeUsernameTaken, KindConflict},
		{CodeWeakPassword, KindInvalidInput},
		{CodeChannelFull, KindStateConflict},
		{CodeBanned, KindStateConflict},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.kind, tt.code.Kind(), string(tt.code))
		assert.True(t, IsKind(New(tt.code, "x"), tt.kind), string(tt.code))
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeMuted, "you are muted in this channel")
	assert.True(t, IsCode(err, CodeMuted))
	assert.False(t, IsCode(err, CodeBanned))
	assert.False(t, IsCode(nil, CodeMuted))
}
