package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/lenssim/internal/lens"
	"github.com/san-kum/lenssim/internal/metrics"
)

type Document struct {
	ID      string             `json:"id,omitempty"`
	Params  lens.Params        `json:"params"`
	Sampler string             `json:"sampler"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
	Source  metrics.Summary    `json:"source_summary"`
	Lensed  metrics.Summary    `json:"lensed_summary"`
	Fields  *FieldData         `json:"fields,omitempty"`
}

type FieldData struct {
	Source [][]float64 `json:"source"`
	Lensed [][]float64 `json:"lensed"`
}

func NewDocument(id string, res *lens.Result, m map[string]float64, withFields bool) Document {
	doc := Document{
		ID:      id,
		Params:  res.Params,
		Sampler: res.Sampler,
		Metrics: m,
		Source:  metrics.Summarize(res.Source),
		Lensed:  metrics.Summarize(res.Lensed),
	}
	if withFields {
		doc.Fields = &FieldData{
			Source: res.Source.Rows(),
			Lensed: res.Lensed.Rows(),
		}
	}
	return doc
}

// ExportJSON writes an indented document for the run.
func ExportJSON(w io.Writer, id string, res *lens.Result, m map[string]float64, withFields bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(id, res, m, withFields))
}
