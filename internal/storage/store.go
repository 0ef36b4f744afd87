package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

const (
	metadataFile = "metadata.json"
	historyFile  = "history.csv"
	responseFile = "response.csv"
)

var historyHeader = []string{"generation", "kp", "ki", "kd", "fitness"}

// Store keeps one directory per optimization run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID          string     `json:"id"`
	Algorithm   string     `json:"algorithm"`
	Plant       string     `json:"plant"`
	Num         []float64  `json:"num"`
	Den         []float64  `json:"den"`
	Cost        string     `json:"cost"`
	Timestamp   time.Time  `json:"timestamp"`
	Seed        int64      `json:"seed"`
	Gains       [3]float64 `json:"gains"`
	BestFitness float64    `json:"best_fitness"`
	Converged   bool       `json:"converged"`
	Generations int        `json:"generations"`
	Evaluations int        `json:"evaluations"`
	DurationMS  int64      `json:"duration_ms"`
	// Metrics holds the step characteristics of the best loop, if computed.
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// HistoryRow is the best candidate after one generation.
type HistoryRow struct {
	Generation int     `json:"generation"`
	Kp         float64 `json:"kp"`
	Ki         float64 `json:"ki"`
	Kd         float64 `json:"kd"`
	Fitness    float64 `json:"fitness"`
}

// Save writes metadata.json and history.csv into a fresh run directory and
// returns the run id. meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, history []HistoryRow) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Algorithm, now.UnixNano())
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	rows := make([][]string, 0, len(history)+1)
	rows = append(rows, historyHeader)
	for _, h := range history {
		rows = append(rows, []string{
			strconv.Itoa(h.Generation),
			formatFloat(h.Kp),
			formatFloat(h.Ki),
			formatFloat(h.Kd),
			formatFloat(h.Fitness),
		})
	}
	if err := writeCSV(filepath.Join(runDir, historyFile), rows); err != nil {
		return "", err
	}

	return runID, nil
}

// SaveResponse stores a sampled step response next to a run.
func (s *Store) SaveResponse(runID string, times, outputs []float64) error {
	if len(times) != len(outputs) {
		return fmt.Errorf("storage: %d times for %d outputs", len(times), len(outputs))
	}
	rows := make([][]string, 0, len(times)+1)
	rows = append(rows, []string{"time", "output"})
	for i := range times {
		rows = append(rows, []string{formatFloat(times[i]), formatFloat(outputs[i])})
	}
	return writeCSV(filepath.Join(s.Dir(runID), responseFile), rows)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadHistory(runID string) ([]HistoryRow, error) {
	records, err := readCSV(filepath.Join(s.Dir(runID), historyFile))
	if err != nil {
		return nil, err
	}

	history := make([]HistoryRow, 0, len(records))
	for i, record := range records {
		if len(record) != len(historyHeader) {
			return nil, fmt.Errorf("storage: history row %d has %d fields", i+1, len(record))
		}
		gen, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("storage: history row %d: %w", i+1, err)
		}
		vals, err := parseFloats(record[1:])
		if err != nil {
			return nil, fmt.Errorf("storage: history row %d: %w", i+1, err)
		}
		history = append(history, HistoryRow{Generation: gen, Kp: vals[0], Ki: vals[1], Kd: vals[2], Fitness: vals[3]})
	}
	return history, nil
}

func (s *Store) LoadResponse(runID string) ([]float64, []float64, error) {
	records, err := readCSV(filepath.Join(s.Dir(runID), responseFile))
	if err != nil {
		return nil, nil, err
	}

	times := make([]float64, 0, len(records))
	outputs := make([]float64, 0, len(records))
	for i, record := range records {
		vals, err := parseFloats(record)
		if err != nil || len(vals) != 2 {
			return nil, nil, fmt.Errorf("storage: response row %d malformed", i+1)
		}
		times = append(times, vals[0])
		outputs = append(outputs, vals[1])
	}
	return times, outputs, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// readCSV returns every record after the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
