package huggingface

import (
	"encoding/json"
	"errors"
)

type featureExtractionRequest struct {
	Inputs  []string                 `json:"inputs"`
	Options featureExtractionOptions `json:"options"`
}

type featureExtractionOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// decodeVector accepts either a pooled sentence vector or a matrix of
// token vectors, which is mean-pooled into one vector.
func decodeVector(raw json.RawMessage) ([]float32, error) {
	var pooled []float32
	if err := json.Unmarshal(raw, &pooled); err == nil {
		return pooled, nil
	}

	var tokens [][]float32
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, err
	}

	if len(tokens) == 0 || len(tokens[0]) == 0 {
		return nil, errors.New("empty token matrix")
	}

	mean := make([]float32, len(tokens[0]))
	for _, tok := range tokens {
		if len(tok) != len(mean) {
			return nil, errors.New("ragged token matrix")
		}
		for i, v := range tok {
			mean[i] += v
		}
	}

	n := float32(len(tokens))
	for i := range mean {
		mean[i] /= n
	}

	return mean, nil
}
