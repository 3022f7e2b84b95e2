package internal

import "gonum.org/v1/gonum/mat"

type Embedding struct {
	Word   string
	Index  int
	Vector []float64
}

// NewEmbedding copies vec so the result does not alias the store's matrix.
func NewEmbedding(word string, index int, vec []float64) Embedding {
	return Embedding{
		Word:   word,
		Index:  index,
		Vector: append([]float64(nil), vec...),
	}
}

func (e Embedding) Dimension() int {
	return len(e.Vector)
}

type VectorSource interface {
	EmbeddingMatrix() (*mat.Dense, error)
	EmbeddingSubset(vocab map[string]int) (*mat.Dense, error)
	WordIndexes() (map[string]int, error)
	Lookup(word string) (Embedding, error)
	Spec() (Spec, error)
}
