package internal

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUnsupportedSpec    = errors.New("unsupported vector spec")
	ErrParse              = errors.New("parse vectors")
	ErrVocabularyMismatch = fmt.Errorf("%w: vocabulary size mismatch", ErrParse)
	ErrFileAccess         = errors.New("vector file access")
	ErrNotLoaded          = errors.New("vectors not loaded: call LoadVectors first")
	ErrInvalidSubset      = errors.New("invalid subset vocabulary")
	ErrUnknownWord        = errors.New("unknown word")
)

var _ VectorSource = (*VectorStore)(nil)

// StoreOptions carries the collaborators of a VectorStore. Zero values are
// replaced with defaults by NewVectorStore.
type StoreOptions struct {
	FS       billy.Filesystem
	Resolver SpecResolver
	Rand     *rand.Rand
	Logger   *zap.Logger
	Metrics  *Metrics
	Progress ProgressFunc

	// Strict rejects files whose line count differs from the resolved
	// vocabulary size instead of sizing the matrix to the file.
	Strict bool
}

// vectorState is immutable once published through VectorStore.state.
type vectorState struct {
	path   string
	spec   Spec
	matrix *mat.Dense
	words  map[string]int
}

type VectorStore struct {
	mu    sync.RWMutex
	state *vectorState

	fs       billy.Filesystem
	resolver SpecResolver
	logger   *zap.Logger
	metrics  *Metrics
	progress ProgressFunc
	strict   bool

	randMu sync.Mutex
	rng    *rand.Rand
}

func NewVectorStore(opts StoreOptions) *VectorStore {
	s := &VectorStore{
		fs:       opts.FS,
		resolver: opts.Resolver,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		progress: opts.Progress,
		strict:   opts.Strict,
		rng:      opts.Rand,
	}
	if s.fs == nil {
		s.fs = osfs.New("")
	}
	if s.resolver == nil {
		s.resolver = NewFilenameResolver()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

func (s *VectorStore) loaded() (*vectorState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, ErrNotLoaded
	}
	return s.state, nil
}

func (s *VectorStore) swap(st *vectorState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// EmbeddingMatrix returns the loaded matrix without copying it. Callers must
// treat it as read-only.
func (s *VectorStore) EmbeddingMatrix() (*mat.Dense, error) {
	st, err := s.loaded()
	if err != nil {
		return nil, err
	}
	return st.matrix, nil
}

// WordIndexes returns the word to row mapping without copying it.
func (s *VectorStore) WordIndexes() (map[string]int, error) {
	st, err := s.loaded()
	if err != nil {
		return nil, err
	}
	return st.words, nil
}

func (s *VectorStore) Lookup(word string) (Embedding, error) {
	st, err := s.loaded()
	if err != nil {
		return Embedding{}, err
	}
	idx, ok := st.words[word]
	if !ok {
		return Embedding{}, fmt.Errorf("%w: %q", ErrUnknownWord, word)
	}
	return NewEmbedding(word, idx, st.matrix.RawRowView(idx)), nil
}

// Spec reports the shape of the loaded matrix, which may differ from the
// resolver's answer when the file was shorter or longer than expected.
func (s *VectorStore) Spec() (Spec, error) {
	st, err := s.loaded()
	if err != nil {
		return Spec{}, err
	}
	return st.spec, nil
}

// Path returns the file the current vectors were loaded from, or "".
func (s *VectorStore) Path() string {
	st, err := s.loaded()
	if err != nil {
		return ""
	}
	return st.path
}

func (s *VectorStore) Filesystem() billy.Filesystem {
	return s.fs
}
