package errors

import (
	stderrors "errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithContext(t *testing.T) {
	err := New(CodeInvalidFlags, "ambiguous create")
	err = WithContext(err, "flags", 0o101)
	err = WithContext(err, "path", "/tmp/a")

	ctx := err.Context()
	require.Equal(t, 0o101, ctx["flags"])
	require.Equal(t, "/tmp/a", ctx["path"])
	require.Equal(t, CodeInvalidFlags, err.Code())
}

func TestWithContext_PreservesCause(t *testing.T) {
	err := Wrap(syscall.EINVAL, CodeInvalidFlags, "bad mode")
	err = WithContext(err, "mode", "rw")

	require.ErrorIs(t, err, syscall.EINVAL)
}

func TestWithContext_StandardError(t *testing.T) {
	std := stderrors.New("plain")
	err := WithContext(std, "k", "v")

	require.Equal(t, CodeUnknown, err.Code())
	require.Equal(t, "plain", err.Message())
	require.ErrorIs(t, err, std)
}

func TestWithContextMap_Overrides(t *testing.T) {
	err := WithContext(New(CodeLifecycle, "x"), "a", 1)
	err = WithContextMap(err, map[string]interface{}{"a": 2, "b": 3})

	require.Equal(t, 2, err.Context()["a"])
	require.Equal(t, 3, err.Context()["b"])
}

func TestWithContext_Nil(t *testing.T) {
	require.Nil(t, WithContext(nil, "k", "v"))
}

func TestContext_IsCopy(t *testing.T) {
	err := WithContext(New(CodeLifecycle, "x"), "a", 1)
	err.Context()["a"] = 99
	require.Equal(t, 1, err.Context()["a"])
}
