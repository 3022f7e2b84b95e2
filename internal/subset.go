package internal

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// EmbeddingSubset builds a len(vocab) x dimension matrix where row vocab[w]
// holds the vector of w. Words missing from the store get a fresh draw from
// the standard normal distribution. Rows are filled in target order, so a
// seeded random source yields the same matrix for the same input.
//
// An empty vocab returns ErrInvalidSubset: gonum cannot represent a matrix
// with zero rows, so there is no 0 x dimension result.
func (s *VectorStore) EmbeddingSubset(vocab map[string]int) (*mat.Dense, error) {
	st, err := s.loaded()
	if err != nil {
		return nil, err
	}

	order, err := subsetOrder(vocab)
	if err != nil {
		return nil, err
	}

	subset := mat.NewDense(len(order), st.spec.Dimension, nil)
	oov := 0

	s.randMu.Lock()
	for target, word := range order {
		row := subset.RawRowView(target)
		if src, ok := st.words[word]; ok {
			copy(row, st.matrix.RawRowView(src))
			continue
		}
		oov++
		for j := range row {
			row[j] = s.rng.NormFloat64()
		}
	}
	s.randMu.Unlock()

	s.metrics.RecordSubset(context.Background(), len(order), oov)
	return subset, nil
}

// subsetOrder inverts vocab into a slice indexed by target row. Targets must
// form a permutation of [0, len(vocab)).
func subsetOrder(vocab map[string]int) ([]string, error) {
	if len(vocab) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrInvalidSubset)
	}

	order := make([]string, len(vocab))
	taken := make([]bool, len(vocab))
	for word, target := range vocab {
		if target < 0 || target >= len(vocab) {
			return nil, fmt.Errorf("%w: index %d for %q outside [0, %d)", ErrInvalidSubset, target, word, len(vocab))
		}
		if taken[target] {
			return nil, fmt.Errorf("%w: index %d assigned to both %q and %q", ErrInvalidSubset, target, order[target], word)
		}
		order[target] = word
		taken[target] = true
	}
	return order, nil
}
