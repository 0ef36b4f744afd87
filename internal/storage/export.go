package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/pidtune/internal/ga"
	"github.com/san-kum/pidtune/internal/pso"
)

type ExportData struct {
	Run     RunMetadata  `json:"run"`
	History []HistoryRow `json:"history"`
}

// ExportJSON writes a run and its history as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, history []HistoryRow) error {
	if history == nil {
		history = []HistoryRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, History: history})
}

func FromGA(res *ga.Result) []HistoryRow {
	rows := make([]HistoryRow, len(res.History))
	for i, rec := range res.History {
		rows[i] = row(rec.Generation, rec.Best, rec.BestFitness)
	}
	return rows
}

func FromPSO(res *pso.Result) []HistoryRow {
	rows := make([]HistoryRow, len(res.History))
	for i, best := range res.History {
		rows[i] = row(i, best, res.FitnessHistory[i])
	}
	return rows
}

func row(gen int, genes []float64, fitness float64) HistoryRow {
	g := make([]float64, 3)
	copy(g, genes)
	return HistoryRow{Generation: gen, Kp: g[0], Ki: g[1], Kd: g[2], Fitness: fitness}
}
