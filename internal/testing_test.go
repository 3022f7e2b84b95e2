package internal

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

const threeWords = "cat 0.1 0.2\ndog 0.3 0.4\nfish 0.5 0.6\n"

func writeVectors(t *testing.T, fs billy.Filesystem, name, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, name, []byte(content), 0644))
}

// newTestStore returns a store over an in-memory filesystem holding
// vectors.txt with threeWords.
func newTestStore(t *testing.T, opts StoreOptions) (*VectorStore, billy.Filesystem) {
	t.Helper()
	fs := memfs.New()
	writeVectors(t, fs, "vectors.txt", threeWords)
	opts.FS = fs
	if opts.Resolver == nil {
		opts.Resolver = StaticResolver{VocabularySize: 3, Dimension: 2}
	}
	return NewVectorStore(opts), fs
}

// newSingleWordFS holds one.txt with a single zero vector of dim values.
func newSingleWordFS(t *testing.T, dim int) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	line := []byte("one")
	for i := 0; i < dim; i++ {
		line = append(line, " 0"...)
	}
	writeVectors(t, fs, "one.txt", string(line)+"\n")
	return fs
}
