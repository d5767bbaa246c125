// Package store exports embedding models to SQLite databases and imports
// them back.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/born-ml/wordvec/internal/config"
	"github.com/born-ml/wordvec/internal/lookup"
	"github.com/born-ml/wordvec/internal/vectors"
	"github.com/born-ml/wordvec/internal/vocab"
)

// SchemaVersion is written to _meta and checked on import.
const SchemaVersion = 1

// Tensor names used in the vectors table.
const (
	TensorSyn0    = "syn0"
	TensorSyn1    = "syn1"
	TensorSyn1Neg = "syn1neg"
)

// ErrNotExported is returned when a database holds no exported model.
var ErrNotExported = errors.New("database does not contain an exported model")

const schema = `
CREATE TABLE _meta (
  key TEXT PRIMARY KEY,
  value TEXT
);
CREATE TABLE words (
  idx INTEGER,
  label TEXT PRIMARY KEY,
  frequency REAL NOT NULL,
  sequences_count INTEGER NOT NULL,
  special INTEGER NOT NULL,
  is_label INTEGER NOT NULL,
  code_length INTEGER NOT NULL,
  codes TEXT,
  points TEXT
);
CREATE INDEX idx_words_idx ON words(idx);
CREATE TABLE vectors (
  tensor TEXT NOT NULL,
  row_idx INTEGER NOT NULL,
  data BLOB NOT NULL,
  PRIMARY KEY (tensor, row_idx)
)`

// lookupMeta is stored as JSON under the "lookup" key.
type lookupMeta struct {
	VectorLength int               `json:"vector_length"`
	UseAdaGrad   bool              `json:"use_ada_grad"`
	Negative     float64           `json:"negative"`
	Seed         int64             `json:"seed"`
	Shapes       map[string][2]int `json:"shapes"`
}

// openDB opens a SQLite database for a model.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	return db, nil
}

// Export writes s to a new SQLite database at path, replacing any existing file.
func Export(ctx context.Context, path string, s *vectors.SequenceVectors) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	tempPath := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("creating database: %w", err)
	}

	if err := export(ctx, tempPath, s); err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming database: %w", err)
	}
	return nil
}

func export(ctx context.Context, path string, s *vectors.SequenceVectors) (err error) {
	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing database: %w", closeErr)
		}
	}()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := writeMeta(ctx, tx, s); err != nil {
		return err
	}
	if err := writeWords(ctx, tx, s.Vocab()); err != nil {
		return err
	}
	table := s.LookupTable()
	for name, m := range map[string]*lookup.Matrix{
		TensorSyn0:    table.Syn0(),
		TensorSyn1:    table.Syn1(),
		TensorSyn1Neg: table.Syn1Neg(),
	} {
		if err := writeMatrix(ctx, tx, name, m); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}

func writeMeta(ctx context.Context, tx *sql.Tx, s *vectors.SequenceVectors) error {
	cfgJSON, err := s.Configuration().ToJSON()
	if err != nil {
		return err
	}

	table := s.LookupTable()
	meta := lookupMeta{
		VectorLength: table.LayerSize(),
		UseAdaGrad:   table.UseAdaGrad(),
		Negative:     table.Negative(),
		Seed:         table.Seed(),
		Shapes:       make(map[string][2]int),
	}
	for name, m := range map[string]*lookup.Matrix{
		TensorSyn0:    table.Syn0(),
		TensorSyn1:    table.Syn1(),
		TensorSyn1Neg: table.Syn1Neg(),
	} {
		if m != nil {
			meta.Shapes[name] = [2]int{m.Rows(), m.Cols()}
		}
	}
	lookupJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding lookup metadata: %w", err)
	}

	cache := s.Vocab()
	values := map[string]string{
		"schema_version":         strconv.Itoa(SchemaVersion),
		"configuration":          string(cfgJSON),
		"lookup":                 string(lookupJSON),
		"layer_size":             strconv.Itoa(s.LayerSize()),
		"total_word_occurrences": strconv.FormatInt(cache.TotalWordOccurrences(), 10),
		"total_docs":             strconv.FormatInt(cache.TotalNumberOfDocs(), 10),
	}
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, `INSERT INTO _meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("writing meta %s: %w", key, err)
		}
	}
	return nil
}

func writeWords(ctx context.Context, tx *sql.Tx, cache *vocab.Cache) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO words
  (idx, label, frequency, sequences_count, special, is_label, code_length, codes, points)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing words insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range cache.Elements() {
		var idx sql.NullInt64
		if w.Index >= 0 {
			idx = sql.NullInt64{Int64: int64(w.Index), Valid: true}
		}
		codes, err := json.Marshal(w.Codes)
		if err != nil {
			return err
		}
		points, err := json.Marshal(w.Points)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, idx, w.Word, w.Frequency, w.SequencesCount,
			w.Special, w.IsLabel, w.CodeLength, string(codes), string(points)); err != nil {
			return fmt.Errorf("writing word %q: %w", w.Word, err)
		}
	}
	return nil
}

func writeMatrix(ctx context.Context, tx *sql.Tx, name string, m *lookup.Matrix) error {
	if m == nil {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO vectors (tensor, row_idx, data) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing vectors insert: %w", err)
	}
	defer stmt.Close()

	buf := make([]byte, 4*m.Cols())
	for i := range m.Rows() {
		for j, v := range m.Row(i) {
			binary.LittleEndian.PutUint32(buf[j*4:], math.Float32bits(v))
		}
		if _, err := stmt.ExecContext(ctx, name, i, buf); err != nil {
			return fmt.Errorf("writing %s row %d: %w", name, i, err)
		}
	}
	return nil
}

// Import reads a model exported by Export. syn1 and syn1neg are restored only
// when readExtended is set.
func Import(ctx context.Context, path string, readExtended bool) (*vectors.SequenceVectors, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return nil, err
	}
	if v := meta["schema_version"]; v != strconv.Itoa(SchemaVersion) {
		return nil, fmt.Errorf("%w: schema version %q", ErrNotExported, v)
	}

	cfg, err := config.FromJSON([]byte(meta["configuration"]))
	if err != nil {
		return nil, err
	}
	var lm lookupMeta
	if err := json.Unmarshal([]byte(meta["lookup"]), &lm); err != nil {
		return nil, fmt.Errorf("decoding lookup metadata: %w", err)
	}

	cache, err := readWords(ctx, db)
	if err != nil {
		return nil, err
	}
	total, err := strconv.ParseInt(meta["total_word_occurrences"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing total_word_occurrences: %w", err)
	}
	docs, err := strconv.ParseInt(meta["total_docs"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing total_docs: %w", err)
	}
	cache.SetTotalWordOccurrences(total)
	cache.SetTotalDocCount(docs)

	table := lookup.NewTable(
		lookup.WithVocab(cache),
		lookup.WithVectorLength(lm.VectorLength),
		lookup.WithUseAdaGrad(lm.UseAdaGrad),
		lookup.WithNegative(lm.Negative),
		lookup.WithSeed(lm.Seed),
	)

	names := []string{TensorSyn0}
	if readExtended {
		names = append(names, TensorSyn1, TensorSyn1Neg)
	}
	for _, name := range names {
		shape, ok := lm.Shapes[name]
		if !ok {
			continue
		}
		m, err := readMatrix(ctx, db, name, shape)
		if err != nil {
			return nil, err
		}
		switch name {
		case TensorSyn0:
			table.SetSyn0(m)
		case TensorSyn1:
			table.SetSyn1(m)
		case TensorSyn1Neg:
			table.SetSyn1Neg(m)
		}
	}

	return vectors.New(cfg, vectors.WithVocab(cache), vectors.WithLookupTable(table)), nil
}

func readMeta(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM _meta`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotExported, err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning meta: %w", err)
		}
		meta[key] = value.String
	}
	return meta, rows.Err()
}

func readWords(ctx context.Context, db *sql.DB) (*vocab.Cache, error) {
	rows, err := db.QueryContext(ctx, `SELECT idx, label, frequency, sequences_count, special,
  is_label, code_length, codes, points FROM words ORDER BY idx IS NULL, idx, label`)
	if err != nil {
		return nil, fmt.Errorf("querying words: %w", err)
	}
	defer rows.Close()

	cache := vocab.NewCache()
	for rows.Next() {
		var (
			idx           sql.NullInt64
			codes, points sql.NullString
			w             vocab.VocabWord
		)
		if err := rows.Scan(&idx, &w.Word, &w.Frequency, &w.SequencesCount, &w.Special,
			&w.IsLabel, &w.CodeLength, &codes, &points); err != nil {
			return nil, fmt.Errorf("scanning word: %w", err)
		}
		if codes.Valid {
			if err := json.Unmarshal([]byte(codes.String), &w.Codes); err != nil {
				return nil, fmt.Errorf("decoding codes of %q: %w", w.Word, err)
			}
		}
		if points.Valid {
			if err := json.Unmarshal([]byte(points.String), &w.Points); err != nil {
				return nil, fmt.Errorf("decoding points of %q: %w", w.Word, err)
			}
		}

		w.Index = -1
		cache.AddToken(&w)
		if idx.Valid {
			if err := cache.AddWordToIndex(int(idx.Int64), w.Word); err != nil {
				return nil, err
			}
		}
	}
	return cache, rows.Err()
}

func readMatrix(ctx context.Context, db *sql.DB, name string, shape [2]int) (*lookup.Matrix, error) {
	rowsN, cols := shape[0], shape[1]
	if err := lookup.CheckShape(rowsN, cols); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	rows, err := db.QueryContext(ctx, `SELECT row_idx, data FROM vectors WHERE tensor = ? ORDER BY row_idx`, name)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", name, err)
	}
	defer rows.Close()

	m := lookup.NewMatrix(rowsN, cols)
	for rows.Next() {
		var (
			i    int
			data []byte
		)
		if err := rows.Scan(&i, &data); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", name, err)
		}
		if i < 0 || i >= rowsN || len(data) != 4*cols {
			return nil, fmt.Errorf("%s row %d: %d bytes does not fit shape %v", name, i, len(data), shape)
		}
		row := m.Row(i)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[j*4:]))
		}
	}
	return m, rows.Err()
}
