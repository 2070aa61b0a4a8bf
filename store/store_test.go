package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/bearoff/board"
	"github.com/domino14/bearoff/memo"
	"github.com/domino14/bearoff/ratio"
)

func sample() []Entry {
	return []Entry{
		{board.MustNew(1, 0, 0, 0, 0, 0), ratio.New(1, 1)},
		{board.MustNew(0, 0, 0, 1, 0, 0), ratio.New(19, 18)},
		{board.MustNew(0, 0, 0, 0, 0, 2), ratio.New(49945, 23328)},
	}
}

func TestTextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sample()))
	assert.Equal(t, "[1,0,0,0,0,0] 1\n[0,0,0,1,0,0] 19/18\n[0,0,0,0,0,2] 49945/23328\n",
		buf.String())

	got, err := ReadText(&buf)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, e := range sample() {
		assert.Equal(t, e.Board, got[i].Board)
		assert.True(t, e.Value.Equal(got[i].Value))
	}
}

func TestReadTextLenient(t *testing.T) {
	in := `# solved positions

[0,0,0,0,0,1] 5/4
  [1,1,0,0,0,0]   2/2
`
	got, err := ReadText(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "5/4", got[0].Value.String())
	assert.Equal(t, "1", got[1].Value.String())
}

func TestReadTextErrors(t *testing.T) {
	for _, in := range []string{
		"[1,0,0,0,0,0]",
		"1,0,0,0,0,0 1",
		"[1,0,0,0,0] 1",
		"[1,0,0,0,0,0] x/2",
		"[1,0,0,0,0,0] 1/0",
	} {
		_, err := ReadText(strings.NewReader("[0,1,0,0,0,0] 1\n" + in))
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrMalformed), in)
		assert.Contains(t, err.Error(), "line 2", in)
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sample()[1:2]))
	assert.Equal(t, "[0,0,0,1,0,0] 4 19/18 1.055556\n", buf.String())
}

func TestEntriesAndPreload(t *testing.T) {
	tt := memo.New[ratio.Ratio](4)
	assert.Equal(t, 3, Preload(tt, sample()))
	assert.Equal(t, 0, Preload(tt, sample()[:1]))

	es := Entries(tt)
	require.Len(t, es, 3)
	// fewest checkers first
	assert.Equal(t, board.MustNew(0, 0, 0, 1, 0, 0), es[0].Board)
	assert.Equal(t, board.MustNew(1, 0, 0, 0, 0, 0), es[1].Board)
	assert.Equal(t, board.MustNew(0, 0, 0, 0, 0, 2), es[2].Board)
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bearoff.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, sample()))
	// saving again upserts rather than failing
	require.NoError(t, s.Save(ctx, sample()[:1]))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	v, err := s.Lookup(ctx, board.MustNew(0, 0, 0, 1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "19/18", v.String())

	_, err = s.Lookup(ctx, board.MustNew(0, 0, 0, 0, 0, 6))
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Close())

	// reopening sees the same rows
	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Board.Checkers())
	assert.Equal(t, 2, got[2].Board.Checkers())
	assert.Equal(t, "49945/23328", got[2].Value.String())
}

func TestLoadCached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteText(f, sample()))
	require.NoError(t, f.Close())

	got, err := LoadCached(nil, "text", path)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// served from memory once loaded
	require.NoError(t, os.Remove(path))
	got, err = LoadCached(nil, "text", path)
	require.NoError(t, err)
	require.Len(t, got, 3)

	_, err = LoadCached(nil, "xml", path)
	assert.Error(t, err)
	_, err = LoadCached(nil, "text", filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}
