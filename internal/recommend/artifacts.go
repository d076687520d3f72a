package recommend

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Artifact file names inside the model directory.
const (
	ModelFileName       = "crop_recommendation_model.json"
	SoilEncoderFileName = "soil_encoder.json"
	CropEncoderFileName = "crop_encoder.json"

	// ClassifierKindTable is the only classifier encoding understood today.
	ClassifierKindTable = "categorical_table"
)

var (
	// ErrModelUnavailable is returned when artifacts cannot be loaded.
	ErrModelUnavailable = errors.New("recommendation model unavailable")
	// ErrUnknownLabel is returned by LabelEncoder.Transform for unseen labels.
	ErrUnknownLabel = errors.New("label not in encoder vocabulary")
	// ErrUnknownCode is returned by LabelEncoder.InverseTransform for out-of-range codes.
	ErrUnknownCode = errors.New("code not in encoder vocabulary")
)

// Classifier is the trained model. PredictProba returns one probability per
// crop class for a single feature row.
type Classifier interface {
	PredictProba(features []float64) ([]float64, error)
}

// LabelEncoder maps category labels to integer codes and back. Codes are
// positions in Classes, matching the training-time vocabulary.
type LabelEncoder struct {
	Classes []string `json:"classes"`
	index   map[string]int
}

// NewLabelEncoder builds an encoder for the given vocabulary.
func NewLabelEncoder(classes []string) *LabelEncoder {
	e := &LabelEncoder{Classes: append([]string(nil), classes...)}
	e.buildIndex()
	return e
}

func (e *LabelEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}
}

// Transform returns the code for label.
func (e *LabelEncoder) Transform(label string) (int, error) {
	code, ok := e.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return code, nil
}

// InverseTransform returns the label for code.
func (e *LabelEncoder) InverseTransform(code int) (string, error) {
	if code < 0 || code >= len(e.Classes) {
		return "", fmt.Errorf("%w: %d", ErrUnknownCode, code)
	}
	return e.Classes[code], nil
}

// TableClassifier is a categorical classifier over a single encoded feature:
// row i of Proba holds the class probabilities for feature code i.
type TableClassifier struct {
	Kind    string      `json:"kind"`
	Feature string      `json:"feature"`
	Classes int         `json:"classes"`
	Proba   [][]float64 `json:"proba"`
}

// PredictProba returns the probability row for the encoded feature.
func (c *TableClassifier) PredictProba(features []float64) ([]float64, error) {
	if len(features) != 1 {
		return nil, fmt.Errorf("expected 1 feature, got %d", len(features))
	}
	code := int(features[0])
	if float64(code) != features[0] || code < 0 || code >= len(c.Proba) {
		return nil, fmt.Errorf("feature code %v out of range [0,%d)", features[0], len(c.Proba))
	}
	return append([]float64(nil), c.Proba[code]...), nil
}

func (c *TableClassifier) validate() error {
	if c.Kind != ClassifierKindTable {
		return fmt.Errorf("unsupported classifier kind %q", c.Kind)
	}
	for i, row := range c.Proba {
		if len(row) != c.Classes {
			return fmt.Errorf("proba row %d has %d entries, want %d", i, len(row), c.Classes)
		}
	}
	return nil
}

// Artifacts bundles the three trained objects the engine needs.
type Artifacts struct {
	Model       Classifier
	SoilEncoder *LabelEncoder
	CropEncoder *LabelEncoder
}

// LoadArtifacts reads the classifier and both encoders from dir.
// Any missing or malformed file yields an error wrapping ErrModelUnavailable.
func LoadArtifacts(dir string) (*Artifacts, error) {
	slog.Debug("recommend.LoadArtifacts: loading model artifacts", "dir", dir)

	var model TableClassifier
	if err := readJSON(filepath.Join(dir, ModelFileName), &model); err != nil {
		return nil, err
	}
	if err := model.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelUnavailable, ModelFileName, err)
	}

	var soil, crop LabelEncoder
	if err := readJSON(filepath.Join(dir, SoilEncoderFileName), &soil); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, CropEncoderFileName), &crop); err != nil {
		return nil, err
	}
	soil.buildIndex()
	crop.buildIndex()

	if len(model.Proba) != len(soil.Classes) {
		return nil, fmt.Errorf("%w: classifier has %d soil rows, encoder has %d classes", ErrModelUnavailable, len(model.Proba), len(soil.Classes))
	}
	if model.Classes != len(crop.Classes) {
		return nil, fmt.Errorf("%w: classifier has %d crop classes, encoder has %d", ErrModelUnavailable, model.Classes, len(crop.Classes))
	}

	slog.Info("recommend.LoadArtifacts: model artifacts loaded", "dir", dir, "soils", len(soil.Classes), "crops", len(crop.Classes))
	return &Artifacts{Model: &model, SoilEncoder: &soil, CropEncoder: &crop}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrModelUnavailable, filepath.Base(path), err)
	}
	return nil
}
