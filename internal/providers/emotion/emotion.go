// Package emotion talks to an external emotion-detection service. The
// service scores facial affect from a frame sample; when it is not
// configured the Disabled provider keeps the rest of the pipeline running
// without emotion data.
package emotion

import "context"

// Scores are on a 0-100 scale.
type Scores struct {
	Consistency float64 `json:"consistency"`
	Stress      float64 `json:"stress"`
}

type Provider interface {
	// Detect scores emotional signals from JPEG frame samples.
	Detect(ctx context.Context, frames [][]byte) (Scores, bool, error)
	Close() error
}

// Disabled is the null provider used when no emotion service is configured.
type Disabled struct{}

func (Disabled) Detect(ctx context.Context, frames [][]byte) (Scores, bool, error) {
	return Scores{}, false, nil
}

func (Disabled) Close() error { return nil }
