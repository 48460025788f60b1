package scan

import (
	"context"
	"fmt"

	"github.com/juke/dril-dao/pkg/tokenmeta"
	"github.com/juke/dril-dao/pkg/tokenmeta/admin"
)

// Scanner queries stored token configuration records and processes them
// with the provided processor.
type Scanner struct {
	adminSvc admin.AdminService
}

// New creates a new Scanner instance.
func New(adminSvc admin.AdminService) *Scanner {
	return &Scanner{adminSvc: adminSvc}
}

// ScanOptions configures the scan operation.
type ScanOptions struct {
	// AfterID resumes the scan after the given token id (optional)
	AfterID *tokenmeta.TokenID

	// Processor defines the processing logic (required unless DryRun is true)
	Processor EntryProcessor

	// BatchSize controls how many records to query at once (default: 100)
	BatchSize int

	// DryRun if true, doesn't process records, just reports what would be processed
	DryRun bool

	// OnProgress is called after each batch is processed (optional)
	OnProgress func(processed, total int64)
}

// ScanResult contains statistics about the scan operation.
type ScanResult struct {
	// TotalFound is the total number of records found
	TotalFound int64

	// TotalProcessed is the number of records successfully processed
	TotalProcessed int64

	// TotalFailed is the number of records that failed processing
	TotalFailed int64

	// FailedIDs contains the token ids of records that failed processing
	FailedIDs []string

	// LastID is the highest token id seen, usable as AfterID to resume
	LastID *tokenmeta.TokenID
}

// Scan walks all stored configuration records in ascending token id order
// and processes each one with the provided processor. Records are fetched
// in batches. If a record fails processing, the error is recorded but
// scanning continues with the next record.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	result := &ScanResult{}

	// Validate options
	if !opts.DryRun && opts.Processor == nil {
		return result, fmt.Errorf("processor is required when DryRun is false")
	}

	// Set defaults
	if opts.BatchSize == 0 {
		opts.BatchSize = 100
	}

	afterID := opts.AfterID
	for {
		// Query one batch of records
		req := admin.ListTokensRequest{Filters: admin.TokenFilters{
			AfterID: afterID,
			Limit:   &opts.BatchSize,
		}}

		resp, err := s.adminSvc.ListConfiguredTokens(ctx, req)
		if err != nil {
			return result, fmt.Errorf("failed to list token configs: %w", err)
		}

		if len(resp.Entries) == 0 {
			break
		}

		result.TotalFound += int64(len(resp.Entries))

		// Process each record in the batch
		for _, entry := range resp.Entries {
			if opts.DryRun {
				fmt.Printf("[DRY-RUN] Would process: %s (explicit=%t, base=%q, id_in_path=%t)\n",
					entry.TokenID, entry.Config.ExplicitURI != "", entry.Config.BaseURI, entry.Config.UseIDInPath)
				result.TotalProcessed++
				continue
			}

			// Call external processor
			if err := opts.Processor.Process(ctx, entry); err != nil {
				result.TotalFailed++
				result.FailedIDs = append(result.FailedIDs, entry.TokenID.String())
				fmt.Printf("[ERROR] Failed to process %s: %v\n", entry.TokenID, err)
				continue
			}

			result.TotalProcessed++
		}

		last := resp.Entries[len(resp.Entries)-1].TokenID
		result.LastID = &last

		// Report progress if callback provided
		if opts.OnProgress != nil {
			opts.OnProgress(result.TotalProcessed+result.TotalFailed, result.TotalFound)
		}

		// Check if there are more records
		if !resp.HasMore {
			break
		}

		afterID = &last
	}

	return result, nil
}

// ForEach is a convenience method that processes each record with a callback
// function. This is useful for simple inline processing without creating a
// separate processor type.
//
// Example:
//
//	scanner.ForEach(ctx, nil, func(ctx context.Context, entry tokenmeta.TokenConfigEntry) error {
//	    fmt.Printf("Processing %s\n", entry.TokenID)
//	    return doSomething(entry)
//	})
func (s *Scanner) ForEach(ctx context.Context, afterID *tokenmeta.TokenID, fn func(context.Context, tokenmeta.TokenConfigEntry) error) (*ScanResult, error) {
	processor := &funcProcessor{fn: fn}
	return s.Scan(ctx, ScanOptions{
		AfterID:   afterID,
		Processor: processor,
	})
}

// funcProcessor adapts a function to the EntryProcessor interface.
type funcProcessor struct {
	fn func(context.Context, tokenmeta.TokenConfigEntry) error
}

func (p *funcProcessor) Process(ctx context.Context, entry tokenmeta.TokenConfigEntry) error {
	return p.fn(ctx, entry)
}
