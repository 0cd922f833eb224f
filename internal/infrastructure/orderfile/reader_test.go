package orderfile

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReader(t *testing.T) {
	t.Run("Valid UTF-8 export", func(t *testing.T) {
		csv := "Name,Email,Total\n#1001,a@example.com,10.00"
		r, err := NewReader(strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, []string{"Name", "Email", "Total"}, r.Headers())
	})

	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		csv := "\xEF\xBB\xBFName,Email\n#1001,a@example.com"
		r, err := NewReader(strings.NewReader(csv))

		require.NoError(t, err)
		assert.True(t, r.HasHeader("Name"))
	})

	t.Run("Empty file", func(t *testing.T) {
		_, err := NewReader(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Invalid encoding", func(t *testing.T) {
		_, err := NewReader(strings.NewReader("Name\n\xff\xfe\xfd"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("Custom delimiter", func(t *testing.T) {
		csv := "Name;Total\n#1001;10.00"
		r, err := NewReader(strings.NewReader(csv), WithDelimiter(';'))

		require.NoError(t, err)
		assert.Equal(t, []string{"Name", "Total"}, r.Headers())
	})
}

func TestReaderNext(t *testing.T) {
	t.Run("Streams rows in order", func(t *testing.T) {
		csv := "Name,Total\n#1001,10.00\n#1002,20.00"
		r, err := NewReader(strings.NewReader(csv))
		require.NoError(t, err)

		row, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, 0, row.Index)
		assert.Equal(t, 2, row.LineNumber)
		assert.Equal(t, "#1001", row.Get("Name"))

		row, err = r.Next()
		require.NoError(t, err)
		assert.Equal(t, 1, row.Index)
		assert.Equal(t, "#1002", row.Get("Name"))

		_, err = r.Next()
		assert.Equal(t, io.EOF, err)
		assert.Equal(t, 2, r.RowsRead())
	})

	t.Run("Empty rows are skipped", func(t *testing.T) {
		csv := "Name,Total\n#1001,10.00\n,\n#1002,20.00"
		r, err := NewReader(strings.NewReader(csv))
		require.NoError(t, err)

		var names []string
		for {
			row, err := r.Next()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			names = append(names, row.Get("Name"))
		}
		assert.Equal(t, []string{"#1001", "#1002"}, names)
	})

	t.Run("Short rows pad missing columns", func(t *testing.T) {
		csv := "Name,Email,Total\n#1001"
		r, err := NewReader(strings.NewReader(csv))
		require.NoError(t, err)

		row, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, "#1001", row.Get("Name"))
		assert.Equal(t, "", row.Get("Email"))
		assert.Equal(t, "fallback", row.GetOrDefault("Email", "fallback"))
	})

	t.Run("Values are trimmed", func(t *testing.T) {
		csv := "Name,Total\n  #1001  , 10.00 "
		r, err := NewReader(strings.NewReader(csv))
		require.NoError(t, err)

		row, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, "#1001", row.Get("Name"))
	})
}

func TestCountRows(t *testing.T) {
	t.Run("Counts data rows only", func(t *testing.T) {
		csv := "Name,Total\n#1001,10.00\n#1001,5.00\n#1002,20.00"
		n, err := CountRows(strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("Header-only file counts zero", func(t *testing.T) {
		n, err := CountRows(strings.NewReader("Name,Total\n"))

		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}
