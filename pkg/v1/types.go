package v1

import "github.com/4thel00z/glove/internal"

// Spec is the vocabulary size and dimension of a vector file.
type Spec = internal.Spec

// SpecResolver decides the Spec of a file before it is read.
type SpecResolver = internal.SpecResolver

// ResolverFunc adapts a function to SpecResolver.
type ResolverFunc = internal.ResolverFunc

// Embedding is a copy of a single stored word vector.
type Embedding = internal.Embedding

// Config is the YAML/env configuration consumed by Open and NewFromConfig.
type Config = internal.Config

var (
	ErrUnsupportedSpec    = internal.ErrUnsupportedSpec
	ErrParse              = internal.ErrParse
	ErrVocabularyMismatch = internal.ErrVocabularyMismatch
	ErrFileAccess         = internal.ErrFileAccess
	ErrNotLoaded          = internal.ErrNotLoaded
	ErrInvalidSubset      = internal.ErrInvalidSubset
	ErrUnknownWord        = internal.ErrUnknownWord
	ErrInvalidConfig      = internal.ErrInvalidConfig
)
