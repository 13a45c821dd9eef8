package rasterizer

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBinary writes a shell script standing in for pdftoppm.
func fakeBinary(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "pdftoppm")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func writePNG(t *testing.T, path string, size int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, size, size))))
}

func TestPoppler_Render(t *testing.T) {
	t.Parallel()

	fixtures := t.TempDir()
	writePNG(t, filepath.Join(fixtures, "page-1.png"), 1)
	writePNG(t, filepath.Join(fixtures, "page-2.png"), 2)
	writePNG(t, filepath.Join(fixtures, "page-10.png"), 10)

	work := t.TempDir()
	bin := fakeBinary(t, `for last; do :; done
cp "`+fixtures+`"/page-*.png "$(dirname "$last")"/
echo ignored > "$(dirname "$last")/notes.txt"`)

	p := NewPoppler(Config{Binary: bin, TempDir: work}, instrument.NewNoop())
	pages, err := p.Render(context.Background(), []byte("%PDF-1.7"))
	require.NoError(t, err)

	require.Len(t, pages, 3)
	assert.Equal(t, 1, pages[0].Bounds().Dx())
	assert.Equal(t, 2, pages[1].Bounds().Dx())
	assert.Equal(t, 10, pages[2].Bounds().Dx())

	left, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, left, "work directory must be removed")
}

func TestPoppler_Render_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unreadable pdf", func(t *testing.T) {
		t.Parallel()

		work := t.TempDir()
		bin := fakeBinary(t, `echo "Syntax Error: Couldn't read xref table" >&2; exit 1`)

		_, err := NewPoppler(Config{Binary: bin, TempDir: work}, instrument.NewNoop()).Render(context.Background(), []byte("nope"))
		assert.ErrorIs(t, err, entity.ErrInvalidInput)
		assert.ErrorContains(t, err, "Couldn't read xref table")

		left, err := os.ReadDir(work)
		require.NoError(t, err)
		assert.Empty(t, left)
	})

	t.Run("no pages", func(t *testing.T) {
		t.Parallel()

		bin := fakeBinary(t, `exit 0`)
		_, err := NewPoppler(Config{Binary: bin}, instrument.NewNoop()).Render(context.Background(), []byte("%PDF"))
		assert.ErrorIs(t, err, entity.ErrInvalidInput)
	})

	t.Run("missing binary", func(t *testing.T) {
		t.Parallel()

		_, err := NewPoppler(Config{Binary: filepath.Join(t.TempDir(), "absent")}, instrument.NewNoop()).
			Render(context.Background(), []byte("%PDF"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, entity.ErrInvalidInput)
	})

	t.Run("other exit code", func(t *testing.T) {
		t.Parallel()

		bin := fakeBinary(t, `echo "Error opening output file" >&2; exit 2`)
		_, err := NewPoppler(Config{Binary: bin}, instrument.NewNoop()).Render(context.Background(), []byte("%PDF"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, entity.ErrInvalidInput)
		assert.ErrorContains(t, err, "Error opening output file")
	})
}

func TestNewPoppler_Defaults(t *testing.T) {
	t.Parallel()

	p := NewPoppler(Config{}, instrument.NewNoop())
	assert.Equal(t, DefaultBinary, p.cfg.Binary)
	assert.Equal(t, DefaultDPI, p.cfg.DPI)
}
