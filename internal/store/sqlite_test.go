package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/wordvec/internal/lookup"
	"github.com/born-ml/wordvec/internal/vectors"
	"github.com/born-ml/wordvec/internal/vocab"
)

func testModel(t *testing.T) *vectors.SequenceVectors {
	t.Helper()
	cache := vocab.NewCache()
	for i, w := range []*vocab.VocabWord{
		vocab.NewVocabWord(1, "word"),
		vocab.NewVocabWord(2, "test"),
		vocab.NewVocabWord(3, "tester"),
	} {
		cache.AddToken(w)
		if err := cache.AddWordToIndex(i, w.Word); err != nil {
			t.Fatalf("AddWordToIndex: %v", err)
		}
	}
	if err := vocab.BuildHuffman(cache); err != nil {
		t.Fatalf("BuildHuffman: %v", err)
	}
	orphan := vocab.NewVocabWord(0.5, "orphan")
	orphan.Special = true
	cache.AddToken(orphan)
	cache.IncrementTotalDocCount(3)

	table := lookup.NewTable(
		lookup.WithVocab(cache),
		lookup.WithVectorLength(4),
		lookup.WithNegative(5),
		lookup.WithSeed(7),
	)
	table.ResetWeights(true)
	for i := range table.Syn1().Data() {
		table.Syn1().Data()[i] = float32(i) / 3
	}
	return vectors.New(nil, vectors.WithVocab(cache), vectors.WithLookupTable(table), vectors.WithLayerSize(4))
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "model.db")
	want := testModel(t)

	if err := Export(ctx, path, want); err != nil {
		t.Fatalf("Export: %v", err)
	}

	got, err := Import(ctx, path, true)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if !want.Configuration().Equal(got.Configuration()) {
		t.Errorf("configuration differs: %+v vs %+v", want.Configuration(), got.Configuration())
	}
	wv, gv := want.Vocab(), got.Vocab()
	if wv.TotalWordOccurrences() != gv.TotalWordOccurrences() {
		t.Errorf("total occurrences: want %d, got %d", wv.TotalWordOccurrences(), gv.TotalWordOccurrences())
	}
	if wv.TotalNumberOfDocs() != gv.TotalNumberOfDocs() {
		t.Errorf("total docs: want %d, got %d", wv.TotalNumberOfDocs(), gv.TotalNumberOfDocs())
	}
	if wv.NumWords() != gv.NumWords() {
		t.Fatalf("num words: want %d, got %d", wv.NumWords(), gv.NumWords())
	}
	for _, w := range wv.Elements() {
		g, ok := gv.WordFor(w.Word)
		if !ok {
			t.Fatalf("word %q missing", w.Word)
		}
		if !w.Equal(g) {
			t.Errorf("element %q: want %+v, got %+v", w.Word, w, g)
		}
	}

	wt, gt := want.LookupTable(), got.LookupTable()
	if !wt.Syn0().Equal(gt.Syn0()) {
		t.Error("syn0 differs")
	}
	if !wt.Syn1().Equal(gt.Syn1()) {
		t.Error("syn1 differs")
	}
	if !wt.Syn1Neg().Equal(gt.Syn1Neg()) {
		t.Error("syn1neg differs")
	}
	if gt.Seed() != 7 || gt.Negative() != 5 || gt.LayerSize() != 4 {
		t.Errorf("lookup settings not restored: seed=%d negative=%v layer=%d", gt.Seed(), gt.Negative(), gt.LayerSize())
	}
}

func TestImport_WithoutExtended(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "model.db")
	if err := Export(ctx, path, testModel(t)); err != nil {
		t.Fatalf("Export: %v", err)
	}

	got, err := Import(ctx, path, false)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got.LookupTable().Syn0() == nil {
		t.Fatal("syn0 must always be restored")
	}
	if got.LookupTable().Syn1() != nil || got.LookupTable().Syn1Neg() != nil {
		t.Error("syn1 and syn1neg must be skipped")
	}
}

func TestExport_Overwrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "model.db")
	if err := os.WriteFile(path, []byte("stale"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := Export(ctx, path, testModel(t)); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if err := Export(ctx, path, testModel(t)); err != nil {
		t.Fatalf("second Export: %v", err)
	}
	if _, err := Import(ctx, path, false); err != nil {
		t.Fatalf("Import: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary database left behind: %d entries", len(entries))
	}
}

func TestImport_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	if _, err := Import(ctx, filepath.Join(dir, "missing.db"), false); err == nil {
		t.Error("expected error for missing database")
	}
	if _, err := os.Stat(filepath.Join(dir, "missing.db")); !os.IsNotExist(err) {
		t.Error("Import must not create a database")
	}

	empty := filepath.Join(dir, "empty.db")
	db, err := sql.Open("sqlite", empty)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE other (x INTEGER)`); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	db.Close()

	_, err = Import(ctx, empty, false)
	if !errors.Is(err, ErrNotExported) {
		t.Errorf("expected ErrNotExported, got %v", err)
	}
}

func TestExport_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "model.db")
	if err := Export(ctx, path, testModel(t)); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("canceled export must not leave a database")
	}
}
