package mongodb

import "errors"

var (
	ErrEmptyPredicate = errors.New("delete predicate must not be empty")
	ErrUnknownFacet   = errors.New("unknown aggregation dimension")
)
