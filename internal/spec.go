package internal

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// GloveVocabularySizes maps the corpus size of the published GloVe files, in
// billions of tokens, to the number of vectors each file holds.
var GloveVocabularySizes = map[int]int{
	42:  1917494,
	840: 2196017,
	27:  1193514,
	6:   400000,
}

type Spec struct {
	VocabularySize int
	Dimension      int
}

func (s Spec) Validate() error {
	if s.VocabularySize <= 0 {
		return fmt.Errorf("%w: vocabulary size must be positive, got %d", ErrUnsupportedSpec, s.VocabularySize)
	}
	if s.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", ErrUnsupportedSpec, s.Dimension)
	}
	return nil
}

func (s Spec) String() string {
	return fmt.Sprintf("%dx%d", s.VocabularySize, s.Dimension)
}

// SpecResolver decides the expected shape of a vector file before it is read.
type SpecResolver interface {
	Resolve(path string) (Spec, error)
}

type ResolverFunc func(path string) (Spec, error)

func (f ResolverFunc) Resolve(path string) (Spec, error) {
	return f(path)
}

// FilenameResolver reads the shape from names like glove.840B.300d.txt: the
// third segment from the end holds the token count, the second the dimension.
type FilenameResolver struct {
	sizes map[int]int
}

func NewFilenameResolver() *FilenameResolver {
	return &FilenameResolver{sizes: GloveVocabularySizes}
}

func (r *FilenameResolver) Resolve(path string) (Spec, error) {
	name := filepath.Base(path)
	parts := strings.Split(name, ".")
	if len(parts) < 3 {
		return Spec{}, fmt.Errorf("%w: %q does not encode token count and dimension", ErrUnsupportedSpec, name)
	}

	dim, err := suffixedInt(parts[len(parts)-2])
	if err != nil {
		return Spec{}, fmt.Errorf("%w: dimension in %q: %w", ErrUnsupportedSpec, name, err)
	}
	tokens, err := suffixedInt(parts[len(parts)-3])
	if err != nil {
		return Spec{}, fmt.Errorf("%w: token count in %q: %w", ErrUnsupportedSpec, name, err)
	}

	size, ok := r.sizes[tokens]
	if !ok {
		return Spec{}, fmt.Errorf("%w: no known vocabulary size for %dB tokens", ErrUnsupportedSpec, tokens)
	}
	return Spec{VocabularySize: size, Dimension: dim}, nil
}

// suffixedInt parses segments such as "300d" or "6B", ignoring the unit.
func suffixedInt(segment string) (int, error) {
	if len(segment) < 2 {
		return 0, fmt.Errorf("segment %q too short", segment)
	}
	n, err := strconv.Atoi(segment[:len(segment)-1])
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("segment %q is not positive", segment)
	}
	return n, nil
}

// StaticResolver returns the same caller-supplied shape for every path.
type StaticResolver Spec

func (r StaticResolver) Resolve(string) (Spec, error) {
	s := Spec(r)
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// ScanResolver discovers the shape by reading the file once: the vocabulary
// size is the number of non-blank lines and the dimension comes from the
// first of them.
type ScanResolver struct {
	fs billy.Filesystem
}

func NewScanResolver(fs billy.Filesystem) *ScanResolver {
	return &ScanResolver{fs: fs}
}

func (r *ScanResolver) Resolve(path string) (Spec, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: open %s: %w", ErrFileAccess, path, err)
	}
	defer f.Close()

	var spec Spec
	sc := newLineScanner(f)
	for sc.Scan() {
		fields := splitFields(sc.Bytes())
		if len(fields) == 0 {
			continue
		}
		if spec.VocabularySize == 0 {
			spec.Dimension = len(fields) - 1
		}
		spec.VocabularySize++
	}
	if err := sc.Err(); err != nil {
		return Spec{}, scanError(path, err)
	}
	if spec.VocabularySize == 0 {
		return Spec{}, fmt.Errorf("%w: %s: no vectors", ErrParse, path)
	}
	if spec.Dimension == 0 {
		return Spec{}, fmt.Errorf("%w: %s:1: word has no values", ErrParse, path)
	}
	return spec, nil
}
