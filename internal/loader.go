package internal

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

const (
	// maxLineSize bounds a single vector line; 300-d GloVe lines are ~3KB.
	maxLineSize = 1 << 20

	cancelCheckInterval = 4096

	// maxInitialValues caps the buffer reserved before the file is read, so
	// the resolver's expectation never decides the allocation on its own.
	maxInitialValues = 1 << 20
	maxInitialWords  = 1 << 16
)

// ProgressFunc is called after every parsed line with the number of vectors
// read so far and the vocabulary size the resolver expected.
type ProgressFunc func(loaded, expected int)

// LoadVectors parses the vector file at path and replaces the store's
// contents with it. The previous vectors stay in place if anything fails.
func (s *VectorStore) LoadVectors(ctx context.Context, path string, verbose bool) (err error) {
	start := time.Now()
	words := 0
	defer func() {
		s.metrics.RecordLoad(ctx, time.Since(start), words, err)
	}()

	spec, err := s.resolver.Resolve(path)
	if err != nil {
		return err
	}

	st, err := s.readVectors(ctx, path, spec, verbose)
	if err != nil {
		return err
	}

	s.swap(st)
	words = len(st.words)
	return nil
}

func (s *VectorStore) readVectors(ctx context.Context, path string, spec Spec, verbose bool) (*vectorState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrFileAccess, path, err)
	}
	defer f.Close()

	report := s.progressReporter(path, verbose)
	hint := initialRows(spec)
	data := make([]float64, 0, hint*spec.Dimension)
	words := make(map[string]int, min(hint, maxInitialWords))

	rows, lineNo := 0, 0
	sc := newLineScanner(f)
	for sc.Scan() {
		lineNo++
		if lineNo%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		fields := splitFields(sc.Bytes())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != spec.Dimension+1 {
			return nil, fmt.Errorf("%w: %s:%d: expected %d values, got %d",
				ErrParse, path, lineNo, spec.Dimension, len(fields)-1)
		}
		if !utf8.Valid(fields[0]) {
			return nil, fmt.Errorf("%w: %s:%d: word is not valid UTF-8", ErrParse, path, lineNo)
		}

		for _, field := range fields[1:] {
			v, err := strconv.ParseFloat(string(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d: %w", ErrParse, path, lineNo, err)
			}
			data = append(data, v)
		}

		words[string(fields[0])] = rows
		rows++
		report(rows, spec.VocabularySize)
	}
	if err := sc.Err(); err != nil {
		return nil, scanError(path, err)
	}

	if rows == 0 {
		return nil, fmt.Errorf("%w: %s: no vectors", ErrParse, path)
	}
	if rows != spec.VocabularySize {
		if s.strict {
			return nil, fmt.Errorf("%w: %s: expected %d vectors, got %d",
				ErrVocabularyMismatch, path, spec.VocabularySize, rows)
		}
		s.logger.Warn("vector count differs from expected vocabulary size",
			zap.String("path", path),
			zap.Int("expected", spec.VocabularySize),
			zap.Int("loaded", rows))
	}

	level := zap.DebugLevel
	if verbose {
		level = zap.InfoLevel
	}
	s.logger.Log(level, "word vectors loaded",
		zap.String("path", path),
		zap.Int("words", len(words)),
		zap.Int("dimension", spec.Dimension))

	return &vectorState{
		path:   path,
		spec:   Spec{VocabularySize: rows, Dimension: spec.Dimension},
		matrix: mat.NewDense(rows, spec.Dimension, trimValues(data)),
		words:  words,
	}, nil
}

// initialRows is the number of rows to reserve up front. The product with
// the dimension never exceeds maxInitialValues.
func initialRows(spec Spec) int {
	if spec.Dimension <= 0 {
		return 0
	}
	return min(spec.VocabularySize, maxInitialValues/spec.Dimension)
}

// trimValues drops spare capacity left by append so the matrix does not pin
// a larger backing array than it uses.
func trimValues(data []float64) []float64 {
	if cap(data) == len(data) {
		return data
	}
	return append(make([]float64, 0, len(data)), data...)
}

// progressReporter chains the configured ProgressFunc with verbose logging.
// Verbose output is logged once per whole percent to keep large files quiet.
func (s *VectorStore) progressReporter(path string, verbose bool) ProgressFunc {
	last := -1
	return func(loaded, expected int) {
		if s.progress != nil {
			s.progress(loaded, expected)
		}
		if !verbose || expected <= 0 {
			return
		}
		percent := math.Round(float64(loaded-1)*100/float64(expected)*100) / 100
		if int(percent) == last {
			return
		}
		last = int(percent)
		s.logger.Info("loading word vectors",
			zap.String("path", path),
			zap.Float64("percent", percent))
	}
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

// splitFields splits on ASCII whitespace only. Some GloVe tokens contain
// non-breaking spaces that must stay part of the word.
func splitFields(line []byte) [][]byte {
	return bytes.FieldsFunc(line, isASCIISpace)
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func scanError(path string, err error) error {
	if errors.Is(err, bufio.ErrTooLong) {
		return fmt.Errorf("%w: %s: line exceeds %d bytes", ErrParse, path, maxLineSize)
	}
	return fmt.Errorf("%w: read %s: %w", ErrFileAccess, path, err)
}
