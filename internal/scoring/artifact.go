// Package scoring implements the Scorer component (C5): it loads a
// versioned model artifact, standardizes embeddings, evaluates the
// predictor, clamps to [0,1], and persists PredictedScore rows.
package scoring

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// magic identifies a papersorter model artifact file.
const magic = "PSART001"

// PredictorKind selects the predictor payload's binary shape, per Design
// Note "Dynamic model loading" — an enum implemented as small interfaces
// so alternative backends can be added without reflection.
type PredictorKind byte

const (
	KindLinear PredictorKind = 1
	KindGBTree PredictorKind = 2
)

// Standardizer z-score normalizes an embedding vector before prediction:
// (x - mean) / scale, elementwise.
type Standardizer struct {
	Mean  []float64
	Scale []float64
}

// Apply returns the standardized copy of v.
func (s *Standardizer) Apply(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		scale := 1.0
		if i < len(s.Scale) && s.Scale[i] != 0 {
			scale = s.Scale[i]
		}
		mean := 0.0
		if i < len(s.Mean) {
			mean = s.Mean[i]
		}
		out[i] = (float64(x) - mean) / scale
	}
	return out
}

// Predictor evaluates a standardized embedding to a raw score.
type Predictor interface {
	Kind() PredictorKind
	Predict(x []float64) float64
	encode(w io.Writer) error
}

// Artifact is the in-memory form of a loaded model file: dimension,
// standardizer, and predictor, as named by spec §9's versioned format
// `{header, dim, standardizer_params, predictor_bytes}`.
type Artifact struct {
	Dim          int
	Standardizer *Standardizer
	Predictor    Predictor
}

// Score standardizes v and evaluates the predictor, clamping to [0,1]
// via a logistic squash (spec §4.5 "clamp results to [0,1]").
func (a *Artifact) Score(v []float32) float64 {
	x := a.Standardizer.Apply(v)
	raw := a.Predictor.Predict(x)
	return clamp01(sigmoid(raw))
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Encode serializes the artifact to w in the versioned binary format:
// magic, dim uint32, standardizer (len-prefixed mean/scale float64
// arrays), predictor kind byte, predictor payload.
func (a *Artifact) Encode(w io.Writer) error {
	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(a.Dim)); err != nil {
		return err
	}
	if err := writeFloat64Slice(w, a.Standardizer.Mean); err != nil {
		return err
	}
	if err := writeFloat64Slice(w, a.Standardizer.Scale); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(a.Predictor.Kind())}); err != nil {
		return err
	}
	return a.Predictor.encode(w)
}

// DecodeArtifact parses a versioned model artifact previously written by
// Encode. Returns *entity.SchemaMismatchError-compatible errors are the
// caller's responsibility to wrap; Decode itself reports plain errors for
// malformed files.
func DecodeArtifact(r io.Reader) (*Artifact, error) {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(header) != magic {
		return nil, fmt.Errorf("unrecognized artifact magic %q", header)
	}

	var dim uint32
	if err := binary.Read(r, binary.BigEndian, &dim); err != nil {
		return nil, fmt.Errorf("read dim: %w", err)
	}

	mean, err := readFloat64Slice(r)
	if err != nil {
		return nil, fmt.Errorf("read mean: %w", err)
	}
	scale, err := readFloat64Slice(r)
	if err != nil {
		return nil, fmt.Errorf("read scale: %w", err)
	}

	kindByte := make([]byte, 1)
	if _, err := io.ReadFull(r, kindByte); err != nil {
		return nil, fmt.Errorf("read predictor kind: %w", err)
	}

	var predictor Predictor
	switch PredictorKind(kindByte[0]) {
	case KindLinear:
		predictor, err = decodeLinear(r)
	case KindGBTree:
		predictor, err = decodeGBTree(r)
	default:
		return nil, fmt.Errorf("unknown predictor kind %d", kindByte[0])
	}
	if err != nil {
		return nil, fmt.Errorf("decode predictor: %w", err)
	}

	return &Artifact{
		Dim:          int(dim),
		Standardizer: &Standardizer{Mean: mean, Scale: scale},
		Predictor:    predictor,
	}, nil
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(s))); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, s)
}

func readFloat64Slice(r io.Reader) ([]float64, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	s := make([]float64, n)
	if err := binary.Read(r, binary.BigEndian, s); err != nil {
		return nil, err
	}
	return s, nil
}

// EncodeToBytes is a convenience wrapper around Encode for callers that
// persist the artifact to a plain file.
func (a *Artifact) EncodeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := a.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
