package error

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecError_Error(t *testing.T) {
	cause := errors.New("undefined symbol")

	t.Run("without a file", func(t *testing.T) {
		err := &SpecError{
			Cause:  cause,
			Detail: "foo",
			Row:    3,
			Col:    5,
		}
		assert.Equal(t, "3:5: error: undefined symbol: foo", err.Error())
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("the source line and a caret follow the message", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "g.lrg")
		require.NoError(t, os.WriteFile(path, []byte("%name g;\n\ts : foo;\n"), 0644))
		err := &SpecError{
			Cause:      cause,
			Detail:     "foo",
			FilePath:   path,
			SourceName: "g.lrg",
			Row:        2,
			Col:        6,
		}
		assert.Equal(t, "g.lrg: 2:6: error: undefined symbol: foo\n    \ts : foo;\n    \t    ^", err.Error())
	})

	t.Run("a row without a column", func(t *testing.T) {
		err := &SpecError{
			Cause: cause,
			Row:   7,
		}
		assert.Equal(t, "7: error: undefined symbol", err.Error())
	})
}

func TestSpecErrors(t *testing.T) {
	cause := errors.New("duplicate terminal")
	errs := SpecErrors{
		{Cause: cause, Row: 4, Col: 1},
		{Cause: cause, Row: 2, Col: 9},
		{Cause: cause, Row: 2, Col: 3},
	}
	errs.Sort()
	errs.SetSource("", "stdin")
	assert.Equal(t, "stdin: 2:3: error: duplicate terminal\nstdin: 2:9: error: duplicate terminal\nstdin: 4:1: error: duplicate terminal", errs.Error())
	assert.Equal(t, "", SpecErrors{}.Error())
}
