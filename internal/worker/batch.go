package worker

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aidlens/aidlens/internal/model"
)

// Processor turns one (row, URL) pair into a Fact
type Processor interface {
	ProcessRow(ctx context.Context, row model.Context, url string) (model.Fact, error)
}

// RowJob is one batch row: a Context plus its source URL
type RowJob struct {
	Row       model.Context
	URL       string
	Processor Processor
}

// Execute runs the job
func (j *RowJob) Execute(ctx context.Context) Result {
	fact, err := j.Processor.ProcessRow(ctx, j.Row, j.URL)
	return &FactResult{URL: j.URL, Fact: fact, Error: err}
}

// FactResult is the outcome of one RowJob
type FactResult struct {
	URL   string
	Fact  model.Fact
	Error error
}

// GetError returns the job error, if any
func (r *FactResult) GetError() error {
	return r.Error
}

// BatchRow pairs a Context with the URL to fetch for it
type BatchRow struct {
	Row model.Context
	URL string
}

// BatchProcessor runs many rows through the pipeline concurrently
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessRows runs the rows through the worker pool and returns one
// FactResult per row, in completion order.
func (b *BatchProcessor) ProcessRows(ctx context.Context, rows []BatchRow) []*FactResult {
	if len(rows) == 0 {
		return []*FactResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-done:
		}
	}()

	// Submission and draining run concurrently so batches larger than the
	// pool's channel buffers cannot wedge.
	go func() {
		for _, r := range rows {
			pool.Submit(&RowJob{Row: r.Row, URL: r.URL, Processor: b.processor})
		}
		pool.Close()
	}()

	factResults := make([]*FactResult, 0, len(rows))
	for result := range pool.Results() {
		factResults = append(factResults, result.(*FactResult))
	}
	return factResults
}

// ProcessFile reads a rows CSV and processes it concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*FactResult, error) {
	rows, err := ReadRowsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return b.ProcessRows(ctx, rows), nil
}

// ReadRowsFromFile parses a batch CSV. The header row names the columns;
// "url" is required, the rest are optional hints: donor, bucket, item,
// month, amount, stockpile, lang. Duplicate URLs are dropped.
func ReadRowsFromFile(filePath string) ([]BatchRow, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	r := csv.NewReader(file)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["url"]; !ok {
		return nil, fmt.Errorf("batch file needs a url column")
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []BatchRow
	seen := make(map[string]bool)

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		url := field(record, "url")
		if url == "" || strings.HasPrefix(url, "#") || seen[url] {
			continue
		}
		seen[url] = true

		amount, _ := strconv.ParseFloat(field(record, "amount"), 64)
		stockpile, _ := strconv.ParseBool(field(record, "stockpile"))

		rows = append(rows, BatchRow{
			URL: url,
			Row: model.Context{
				Donor:      field(record, "donor"),
				Bucket:     model.Bucket(field(record, "bucket")),
				ItemHint:   field(record, "item"),
				MonthHint:  field(record, "month"),
				AmountHint: amount,
				Stockpile:  stockpile,
				Language:   field(record, "lang"),
			},
		})
	}

	return rows, nil
}
