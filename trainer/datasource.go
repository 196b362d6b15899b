package trainer

import "context"

import "github.com/neurlang/imageclassifier/net/feedforward"

// DataSource yields numbered batches of labelled samples
type DataSource interface {
	// N returns the number of samples
	N() int

	// Len returns the number of batches
	Len() int

	// Batch returns batch i
	Batch(ctx context.Context, i int) ([]feedforward.FeedforwardNetworkInOutput, error)

	// OnEpochEnd is called after every training epoch
	OnEpochEnd()
}
