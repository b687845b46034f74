package scoring

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Linear is a dot-product predictor: raw = intercept + sum(weights[i]*x[i]).
// It is the simplest PredictorKind and the only one the Scorer trains from
// scratch; KindGBTree artifacts are expected to be produced out-of-process
// and merely loaded here.
type Linear struct {
	Intercept float64
	Weights   []float64
}

func NewLinear(intercept float64, weights []float64) *Linear {
	return &Linear{Intercept: intercept, Weights: weights}
}

func (l *Linear) Kind() PredictorKind { return KindLinear }

func (l *Linear) Predict(x []float64) float64 {
	sum := l.Intercept
	n := len(x)
	if len(l.Weights) < n {
		n = len(l.Weights)
	}
	for i := 0; i < n; i++ {
		sum += l.Weights[i] * x[i]
	}
	return sum
}

func (l *Linear) encode(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, l.Intercept); err != nil {
		return err
	}
	return writeFloat64Slice(w, l.Weights)
}

func decodeLinear(r io.Reader) (Predictor, error) {
	var intercept float64
	if err := binary.Read(r, binary.BigEndian, &intercept); err != nil {
		return nil, fmt.Errorf("read intercept: %w", err)
	}
	weights, err := readFloat64Slice(r)
	if err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}
	return &Linear{Intercept: intercept, Weights: weights}, nil
}
