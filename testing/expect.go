package expect

import (
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var isTest = strings.HasSuffix(os.Args[0], ".test")

func Must[Result any](r Result, err error) Result {
	if err != nil {
		panic(err)
	}
	return r
}

var (
	NoError        = require.NoError
	HasError       = require.Error
	True           = require.True
	False          = require.False
	Nil            = require.Nil
	NotNil         = require.NotNil
	Empty          = require.Empty
	Len            = require.Len
	ErrorContains  = require.ErrorContains
	Panics         = require.Panics
	PanicsWithErr  = require.PanicsWithError
	GreaterOrEqual = require.GreaterOrEqual
	LessOrEqual    = require.LessOrEqual
)

func ErrorIs(t *testing.T, expected error, err error, msgAndArgs ...any) {
	t.Helper()
	require.ErrorIs(t, err, expected, msgAndArgs...)
}

func Equal[T any](t *testing.T, got T, want T, msgAndArgs ...any) {
	t.Helper()
	require.EqualValues(t, want, got, msgAndArgs...)
}

func NotEqual[T any](t *testing.T, got T, want T, msgAndArgs ...any) {
	t.Helper()
	require.NotEqual(t, want, got, msgAndArgs...)
}

func StringsContain(t *testing.T, got string, want string, msgAndArgs ...any) {
	t.Helper()
	require.Contains(t, got, want, msgAndArgs...)
}

func StringsNotContain(t *testing.T, got string, want string, msgAndArgs ...any) {
	t.Helper()
	require.NotContains(t, got, want, msgAndArgs...)
}

// PolicyEqual compares two header values directive by directive, ignoring
// the order in which the directives appear.
func PolicyEqual(t *testing.T, got string, want string) {
	t.Helper()
	gotParts := strings.Split(got, "; ")
	wantParts := strings.Split(want, "; ")
	slices.Sort(gotParts)
	slices.Sort(wantParts)
	require.Equal(t, wantParts, gotParts, "%q != %q", got, want)
}
