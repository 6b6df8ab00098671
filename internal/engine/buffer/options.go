package buffer

// DefaultParagraphHeight is the provisional height given to a new paragraph
// when no Estimator is configured.
const DefaultParagraphHeight = 20.0

// Estimator supplies a provisional height for a paragraph that has not been
// laid out yet.
type Estimator interface {
	EstimateHeight(text string) float64
}

// EstimatorFunc adapts a function to the Estimator interface.
type EstimatorFunc func(text string) float64

// EstimateHeight calls f(text).
func (f EstimatorFunc) EstimateHeight(text string) float64 {
	return f(text)
}

// ConstantEstimator returns an Estimator that always answers height.
func ConstantEstimator(height float64) Estimator {
	return EstimatorFunc(func(string) float64 { return height })
}

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithEstimator sets the provisional height estimator.
func WithEstimator(e Estimator) Option {
	return func(b *Buffer) {
		if e != nil {
			b.estimator = e
		}
	}
}
