package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driven"
	"github.com/custodia-labs/lenslink/internal/core/ports/driving"
	"github.com/custodia-labs/lenslink/internal/logger"
)

// Ensure TrainService implements the interface.
var _ driving.TrainService = (*TrainService)(nil)

// TrainService fits the projection adapter by self-training: the frozen
// base encoder's own best matches become pseudo-labels, and the projection
// learns to sharpen them. The base model is never updated.
type TrainService struct {
	backend driven.EmbeddingService
}

// NewTrainService creates a trainer over the base embedding backend.
func NewTrainService(backend driven.EmbeddingService) *TrainService {
	return &TrainService{backend: backend}
}

// trainExample is one variation with its candidate patterns and the
// pseudo-label index chosen by the base encoder.
type trainExample struct {
	variation []float64
	patterns  [][]float64
	label     int
}

// Train builds pseudo-labelled examples from the documents and runs
// mini-batch gradient descent on the projection matrix, starting from the
// identity so an untrained adapter is a no-op.
func (s *TrainService) Train(ctx context.Context, docs []*domain.Document, opts driving.TrainOptions) (*domain.AdapterCheckpoint, error) {
	if s.backend == nil {
		return nil, fmt.Errorf("train: %w", domain.ErrEmbeddingUnavailable)
	}
	opts = opts.Normalise()

	examples, err := s.buildExamples(ctx, docs)
	if err != nil {
		return nil, err
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("train: no usable documents: %w", domain.ErrInvalidInput)
	}

	dim := s.backend.Dimensions()
	weights := identityMatrix(dim)
	rng := rand.New(rand.NewSource(opts.Seed))

	logger.Section("Training projection adapter")
	logger.Info("%d examples, dim %d, %d epochs, lr %g, batch %d",
		len(examples), dim, opts.Epochs, opts.LearningRate, opts.BatchSize)

	order := make([]int, len(examples))
	for i := range order {
		order[i] = i
	}

	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("train: %w", err)
		}
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var epochLoss float64
		for start := 0; start < len(order); start += opts.BatchSize {
			end := start + opts.BatchSize
			if end > len(order) {
				end = len(order)
			}
			batch := make([]trainExample, 0, end-start)
			for _, idx := range order[start:end] {
				batch = append(batch, examples[idx])
			}
			epochLoss += sgdStep(weights, batch, opts.LearningRate)
		}
		logger.Info("epoch %d/%d: loss %.4f", epoch, opts.Epochs, epochLoss/float64(len(examples)))
	}

	return &domain.AdapterCheckpoint{
		Dim:       dim,
		BaseModel: s.backend.ModelName(),
		Weights:   weights,
	}, nil
}

// buildExamples embeds every usable document with the base backend and
// pseudo-labels each variation with its most similar pattern. Documents
// with fewer than two patterns carry no discriminative signal and are
// skipped.
func (s *TrainService) buildExamples(ctx context.Context, docs []*domain.Document) ([]trainExample, error) {
	var out []trainExample
	for _, doc := range docs {
		if doc == nil || len(doc.Patterns) < 2 || len(doc.Variations) == 0 {
			continue
		}
		texts := make([]string, 0, len(doc.Patterns)+len(doc.Variations))
		for _, p := range doc.Patterns {
			texts = append(texts, PatternText(p))
		}
		for _, v := range doc.Variations {
			texts = append(texts, VariationText(v))
		}
		raw, err := s.backend.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("train: embedding %s: %w", doc.GroupKey, err)
		}
		if len(raw) != len(texts) {
			return nil, fmt.Errorf("train: backend returned %d vectors for %d texts", len(raw), len(texts))
		}

		vecs := make([][]float64, len(raw))
		for i, emb := range raw {
			vec := make([]float64, len(emb))
			for j, f := range emb {
				vec[j] = float64(f)
			}
			normalizeVec(vec)
			vecs[i] = vec
		}
		patternVecs := vecs[:len(doc.Patterns)]

		for i := range doc.Variations {
			vv := vecs[len(doc.Patterns)+i]
			label, best := 0, dot(vv, patternVecs[0])
			for j := 1; j < len(patternVecs); j++ {
				if score := dot(vv, patternVecs[j]); score > best {
					label, best = j, score
				}
			}
			out = append(out, trainExample{variation: vv, patterns: patternVecs, label: label})
		}
	}
	return out, nil
}

// sgdStep applies one gradient step of the cross-entropy loss over
// projected similarity logits, updating weights in place. Returns the
// summed batch loss.
//
// For logits z_j = (Wv)·(Wp_j), the per-example gradient is
// W(A + Aᵀ) with A = Σ_j g_j · v p_jᵀ and g = softmax(z) − onehot(label).
func sgdStep(weights [][]float64, batch []trainExample, lr float64) float64 {
	dim := len(weights)
	grad := zeroMatrix(dim, dim)
	var loss float64

	for _, ex := range batch {
		vProj := matVec(weights, ex.variation)
		logits := make([]float64, len(ex.patterns))
		for j, p := range ex.patterns {
			logits[j] = dot(vProj, matVec(weights, p))
		}
		probs := softmax(logits)
		loss += -math.Log(math.Max(probs[ex.label], 1e-12))

		a := zeroMatrix(dim, dim)
		for j, p := range ex.patterns {
			g := probs[j]
			if j == ex.label {
				g -= 1
			}
			if g == 0 {
				continue
			}
			for r, vr := range ex.variation {
				if vr == 0 {
					continue
				}
				row := a[r]
				gv := g * vr
				for c, pc := range p {
					row[c] += gv * pc
				}
			}
		}
		sym := addTransposed(a)
		addScaled(grad, matMul(weights, sym), 1)
	}

	addScaled(weights, grad, -lr/float64(len(batch)))
	return loss
}

// addTransposed returns m + mᵀ.
func addTransposed(m [][]float64) [][]float64 {
	out := cloneMatrix(m)
	for i := range m {
		for j, v := range m[i] {
			out[j][i] += v
		}
	}
	return out
}

// softmax returns the normalized exponentials of z, shifted for stability.
func softmax(z []float64) []float64 {
	max := z[0]
	for _, v := range z[1:] {
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(z))
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
