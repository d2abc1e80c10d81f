// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package measurement

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/tracelens/test"
)

func TestBaseName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/data/5051_1700000000.jsonl.bz2", want: "5051_1700000000"},
		{path: "5051.jsonl", want: "5051"},
		{path: "dir/5051.bz2", want: "5051"},
		{path: "dir/5051.csv", want: "5051.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseName(tt.path))
		})
	}
}

func TestCreate_Open(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{name: "plain", file: "out/result.jsonl"},
		{name: "compressed", file: "out/result.jsonl.bz2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			content := []byte("{\"prb_id\":1}\n{\"prb_id\":2}\n")

			f, err := Create(path)
			require.NoError(t, err)
			_, err = f.Write(content)
			require.NoError(t, err)

			assert.False(t, Exists(path), "output must not appear before Close")
			require.NoError(t, f.Close())
			assert.True(t, Exists(path))
			assert.False(t, Exists(path+tmpSuffix))

			assert.Equal(t, content, test.ReadFile(t, path))

			r, err := Open(path)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, content, got)
		})
	}
}

func TestFile_Abort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.jsonl.bz2")
	f, err := Create(path)
	require.NoError(t, err)
	_, err = f.Write([]byte("partial"))
	require.NoError(t, err)

	require.NoError(t, f.Abort())
	assert.False(t, Exists(path))
	_, err = os.Stat(path + tmpSuffix)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.jsonl.bz2"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
