package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/lenssim/internal/lens"
)

const (
	metadataFile = "metadata.json"
	sourceFile   = "source.csv"
	lensedFile   = "lensed.csv"
)

// ErrRunNotFound is returned when a run id has no directory in the store.
var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Params    lens.Params        `json:"params"`
	Sampler   string             `json:"sampler"`
	Elapsed   time.Duration      `json:"elapsed_ns"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes the result under a new run id and returns it.
func (s *Store) Save(name string, res *lens.Result, elapsed time.Duration, metrics map[string]float64) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("lens_%d", now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: now,
		Params:    res.Params,
		Sampler:   res.Sampler,
		Elapsed:   elapsed,
		Metrics:   metrics,
	}

	if err := writeRun(runDir, meta, res); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

// writeRun writes metadata.json last so a run is only listed once its
// fields are on disk.
func writeRun(runDir string, meta RunMetadata, res *lens.Result) error {
	if err := writeFieldFile(filepath.Join(runDir, sourceFile), res.Source); err != nil {
		return err
	}
	if err := writeFieldFile(filepath.Join(runDir, lensedFile), res.Lensed); err != nil {
		return err
	}
	return writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
}

// List returns all readable runs, newest first.
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
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadResult rebuilds a lens result from a stored run.
func (s *Store) LoadResult(runID string) (*RunMetadata, *lens.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	source, err := readFieldFile(filepath.Join(s.baseDir, runID, sourceFile))
	if err != nil {
		return nil, nil, err
	}
	lensed, err := readFieldFile(filepath.Join(s.baseDir, runID, lensedFile))
	if err != nil {
		return nil, nil, err
	}
	if source.N() != meta.Params.GridSize || lensed.N() != meta.Params.GridSize {
		return nil, nil, fmt.Errorf("storage: run %s: field size does not match grid size %d", runID, meta.Params.GridSize)
	}

	res := &lens.Result{
		Params:  meta.Params,
		Sampler: meta.Sampler,
		Grid:    lens.NewGrid(meta.Params.GridSize),
		Source:  source,
		Lensed:  lensed,
	}
	return meta, res, nil
}

func (s *Store) Delete(runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}

// create is replaced in tests to simulate write failures.
var create = os.Create

func writeFile(path string, write func(io.Writer) error) error {
	file, err := create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeFieldFile(path string, f *lens.Field) error {
	return writeFile(path, func(w io.Writer) error { return WriteFieldCSV(w, f) })
}

func readFieldFile(path string) (*lens.Field, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadFieldCSV(file)
}

// WriteFieldCSV writes one CSV record per field row.
func WriteFieldCSV(w io.Writer, f *lens.Field) error {
	cw := csv.NewWriter(w)
	n := f.N()
	row := make([]string, n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			row[c] = strconv.FormatFloat(f.At(r, c), 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFieldCSV parses a square field written by [WriteFieldCSV].
func ReadFieldCSV(r io.Reader) (*lens.Field, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, len(records))
	for i, record := range records {
		rows[i] = make([]float64, len(record))
		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", i, j, err)
			}
			rows[i][j] = v
		}
	}
	return lens.FieldFromRows(rows)
}
