package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aidlens/aidlens/internal/model"
)

type mockProcessor struct {
	calls atomic.Int32
}

func (p *mockProcessor) ProcessRow(ctx context.Context, row model.Context, url string) (model.Fact, error) {
	p.calls.Add(1)
	if strings.Contains(url, "fail") {
		return model.Fact{}, fmt.Errorf("fetch %s: boom", url)
	}
	return model.Fact{Donor: row.Donor, SourceURL: url}, nil
}

func TestBatchProcessor_ProcessRows(t *testing.T) {
	proc := &mockProcessor{}
	b := NewBatchProcessor(proc, 3)

	rows := []BatchRow{
		{URL: "https://example.org/a", Row: model.Context{Donor: "Poland"}},
		{URL: "https://example.org/b", Row: model.Context{Donor: "Germany"}},
		{URL: "https://example.org/fail", Row: model.Context{Donor: "France"}},
	}
	results := b.ProcessRows(context.Background(), rows)

	if len(results) != 3 {
		t.Fatalf("Got %d results, want 3", len(results))
	}
	if proc.calls.Load() != 3 {
		t.Errorf("Processor called %d times, want 3", proc.calls.Load())
	}

	var failures int
	for _, r := range results {
		if r.GetError() != nil {
			failures++
			continue
		}
		if r.Fact.Donor == "" {
			t.Errorf("Result for %s lost its row context", r.URL)
		}
	}
	if failures != 1 {
		t.Errorf("Got %d failures, want 1", failures)
	}
}

func TestBatchProcessor_LargeBatch(t *testing.T) {
	// Far more rows than the pool buffers hold; must not wedge
	proc := &mockProcessor{}
	b := NewBatchProcessor(proc, 2)

	rows := make([]BatchRow, 100)
	for i := range rows {
		rows[i] = BatchRow{URL: fmt.Sprintf("https://example.org/%d", i)}
	}
	results := b.ProcessRows(context.Background(), rows)
	if len(results) != 100 {
		t.Errorf("Got %d results, want 100", len(results))
	}
}

func TestBatchProcessor_EmptyRows(t *testing.T) {
	b := NewBatchProcessor(&mockProcessor{}, 2)
	if results := b.ProcessRows(context.Background(), nil); len(results) != 0 {
		t.Errorf("Got %d results, want 0", len(results))
	}
}

func writeBatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write batch file: %v", err)
	}
	return path
}

func TestReadRowsFromFile(t *testing.T) {
	path := writeBatchFile(t, strings.Join([]string{
		"donor,url,item,month,amount,stockpile,lang",
		"Poland,https://example.org/a,T-72,2023-05,1000000,true,pl",
		"Germany,https://example.org/b,,,,,",
		",https://example.org/a,,,,,",
		",,skipped,,,,",
		"#comment,#https://example.org/c,,,,,",
	}, "\n"))

	rows, err := ReadRowsFromFile(path)
	if err != nil {
		t.Fatalf("ReadRowsFromFile: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Got %d rows, want 2 (duplicates, blanks and comments dropped)", len(rows))
	}

	first := rows[0]
	if first.URL != "https://example.org/a" {
		t.Errorf("URL %q", first.URL)
	}
	if first.Row.Donor != "Poland" || first.Row.ItemHint != "T-72" || first.Row.MonthHint != "2023-05" {
		t.Errorf("Hints not parsed: %+v", first.Row)
	}
	if first.Row.AmountHint != 1000000 {
		t.Errorf("AmountHint %v", first.Row.AmountHint)
	}
	if !first.Row.Stockpile {
		t.Error("Stockpile flag not parsed")
	}
	if first.Row.Language != "pl" {
		t.Errorf("Language %q", first.Row.Language)
	}

	second := rows[1]
	if second.Row.Donor != "Germany" || second.Row.Stockpile || second.Row.AmountHint != 0 {
		t.Errorf("Optional columns must default to zero values: %+v", second.Row)
	}
}

func TestReadRowsFromFile_HeaderOrderIndependent(t *testing.T) {
	path := writeBatchFile(t, "url,donor\nhttps://example.org/x,Sweden\n")

	rows, err := ReadRowsFromFile(path)
	if err != nil {
		t.Fatalf("ReadRowsFromFile: %v", err)
	}
	if len(rows) != 1 || rows[0].Row.Donor != "Sweden" {
		t.Errorf("Column mapping failed: %+v", rows)
	}
}

func TestReadRowsFromFile_MissingURLColumn(t *testing.T) {
	path := writeBatchFile(t, "donor,item\nPoland,T-72\n")

	if _, err := ReadRowsFromFile(path); err == nil {
		t.Fatal("Expected an error for a batch file without a url column")
	}
}
