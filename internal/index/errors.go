package index

import "errors"

var (
	// ErrEmptyInput indicates an attempt to build an index from zero vectors.
	ErrEmptyInput = errors.New("no vectors to index")

	// ErrEmptyCatalog indicates that no catalog row produced a usable embedding.
	ErrEmptyCatalog = errors.New("no catalog rows produced a usable embedding")

	// ErrDimensionMismatch indicates a vector whose length disagrees with the
	// index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidK indicates a non-positive k passed to Search.
	ErrInvalidK = errors.New("k must be positive")

	// ErrCorruptStore indicates persisted artifacts that are unreadable or
	// disagree with each other. An index in this state is never served.
	ErrCorruptStore = errors.New("index artifacts are corrupt or inconsistent")
)
