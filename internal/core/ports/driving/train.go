package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/lenslink/internal/core/domain"
)

// TrainOptions configures adapter training.
type TrainOptions struct {
	// Epochs is the number of passes over the training pairs.
	Epochs int

	// LearningRate scales each gradient step.
	LearningRate float64

	// BatchSize is the mini-batch size; pairs are shuffled each epoch.
	BatchSize int

	// Seed fixes the shuffle order for reproducible runs; zero uses a
	// time-based seed.
	Seed int64
}

// Normalise fills unset options with defaults.
func (o TrainOptions) Normalise() TrainOptions {
	if o.Epochs <= 0 {
		o.Epochs = 3
	}
	if o.LearningRate <= 0 {
		o.LearningRate = 1e-4
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 32
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	return o
}

// TrainService fits a projection adapter from a corpus of extracted
// documents using the encoder's own best-match output as pseudo-labels.
type TrainService interface {
	// Train builds pseudo-labeled pairs across the corpus and fits the
	// projection, returning the resulting checkpoint.
	Train(ctx context.Context, docs []*domain.Document, opts TrainOptions) (*domain.AdapterCheckpoint, error)
}
