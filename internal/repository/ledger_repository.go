package repository

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/tirasundara/amazon-reconciliation/internal/domain"
	"github.com/tirasundara/amazon-reconciliation/pkg/fileutil"
)

const (
	columnOrderID  = "order id"
	columnDate     = "date"
	columnTotal    = "total"
	columnPayments = "payments"
	columnRefund   = "refund"
)

var (
	ledgerRequiredFields = []string{columnOrderID, columnDate, columnTotal}
	ledgerOptionalFields = []string{columnPayments, columnRefund}
)

// CSVLedgerRepository implements the LedgerRepository interface for an order history CSV
type CSVLedgerRepository struct {
	FilePath   string
	NumWorkers int
	BatchSize  int
	logger     *slog.Logger
}

var _ domain.LedgerRepository = (*CSVLedgerRepository)(nil)

// NewCSVLedgerRepository creates a new CSVLedgerRepository
func NewCSVLedgerRepository(fp string, logger *slog.Logger) *CSVLedgerRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &CSVLedgerRepository{
		FilePath:   fp,
		NumWorkers: 4,   // Default to 4 workers
		BatchSize:  500, // Default to 500 rows per batch
		logger:     logger,
	}
}

// GetRows reads every ledger row in file order
func (r *CSVLedgerRepository) GetRows() ([]domain.LedgerRow, error) {
	reader := fileutil.NewCSVReader(r.FilePath)

	header, err := reader.ReadHeader()
	if err != nil {
		return nil, fmt.Errorf("reading order ledger header: %w", err)
	}

	columnMap, err := createHeaderMap(header, ledgerRequiredFields, ledgerOptionalFields)
	if err != nil {
		return nil, fmt.Errorf("mapping order ledger columns: %w", err)
	}

	var rows []domain.LedgerRow
	line := 1
	rowProcessorFn := func(record []string) error {
		line++
		rows = append(rows, buildLedgerRow(record, line, header, columnMap))
		return nil
	}

	if err := reader.ReadAndProcessByRow(rowProcessorFn); err != nil {
		return nil, fmt.Errorf("processing order ledger: %w", err)
	}

	r.logger.Debug("read order ledger", slog.String("path", r.FilePath), slog.Int("rows", len(rows)))
	return rows, nil
}

// rowBatch is a slice of raw records tagged with its position in the file
type rowBatch struct {
	seq       int
	firstLine int
	records   [][]string
}

type rowBatchResult struct {
	seq  int
	rows []domain.LedgerRow
}

// GetRowsConcurrently builds rows on a worker pool. Batches are reassembled by
// sequence number so the result keeps file order, which first-fit matching relies on.
func (r *CSVLedgerRepository) GetRowsConcurrently() ([]domain.LedgerRow, error) {
	reader := fileutil.NewCSVReader(r.FilePath)

	header, err := reader.ReadHeader()
	if err != nil {
		return nil, fmt.Errorf("reading order ledger header: %w", err)
	}

	columnMap, err := createHeaderMap(header, ledgerRequiredFields, ledgerOptionalFields)
	if err != nil {
		return nil, fmt.Errorf("mapping order ledger columns: %w", err)
	}

	numWorkers := max(r.NumWorkers, 1)
	batchSize := max(r.BatchSize, 1)

	jobs := make(chan rowBatch, numWorkers)
	results := make(chan rowBatchResult, numWorkers)
	errChan := make(chan error, 1)

	// Start the worker pool
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				rows := make([]domain.LedgerRow, 0, len(batch.records))
				for j, record := range batch.records {
					rows = append(rows, buildLedgerRow(record, batch.firstLine+j, header, columnMap))
				}
				results <- rowBatchResult{seq: batch.seq, rows: rows}
			}
		}()
	}

	// Close results once every worker is done
	go func() {
		wg.Wait()
		close(results)
	}()

	// Read and distribute batches of records to workers
	go func() {
		defer close(jobs)

		seq := 0
		line := 2
		batch := rowBatch{seq: seq, firstLine: line, records: make([][]string, 0, batchSize)}
		err := reader.ReadAndProcessByRow(func(record []string) error {
			batch.records = append(batch.records, record)
			line++
			if len(batch.records) >= batchSize {
				jobs <- batch
				seq++
				batch = rowBatch{seq: seq, firstLine: line, records: make([][]string, 0, batchSize)}
			}
			return nil
		})
		if err != nil {
			errChan <- fmt.Errorf("processing order ledger: %w", err)
			return
		}

		// Send any remaining records in the last batch
		if len(batch.records) > 0 {
			jobs <- batch
		}
	}()

	var collected []rowBatchResult
	for result := range results {
		collected = append(collected, result)
	}

	select {
	case err := <-errChan:
		return nil, err
	default:
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].seq < collected[j].seq
	})

	var rows []domain.LedgerRow
	for _, result := range collected {
		rows = append(rows, result.rows...)
	}

	r.logger.Debug("read order ledger concurrently",
		slog.String("path", r.FilePath),
		slog.Int("rows", len(rows)),
		slog.Int("batches", len(collected)),
	)
	return rows, nil
}

func buildLedgerRow(record []string, line int, header []string, columnMap map[string]int) domain.LedgerRow {
	row := domain.LedgerRow{
		Line:     line,
		OrderID:  cell(record, columnMap, columnOrderID),
		Date:     cell(record, columnMap, columnDate),
		Total:    cell(record, columnMap, columnTotal),
		Payments: cell(record, columnMap, columnPayments),
		Refund:   cell(record, columnMap, columnRefund),
		Extra:    make(map[string]string),
	}

	mapped := make(map[int]bool, len(columnMap))
	for _, idx := range columnMap {
		mapped[idx] = true
	}

	for i, name := range header {
		if mapped[i] || i >= len(record) {
			continue
		}
		row.Extra[strings.TrimSpace(name)] = record[i]
	}

	return row
}
