package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/juke/dril-dao/pkg/tokenmeta"
	"github.com/juke/dril-dao/pkg/tokenmeta/admin"
	"github.com/juke/dril-dao/pkg/tokenmeta/repo/memory"
	repopg "github.com/juke/dril-dao/pkg/tokenmeta/repo/postgres"
)

const usage = `Token URI Admin CLI

A lightweight admin tool for token URI configuration that only requires
database access.

USAGE:
  admin <command> [options]

COMMANDS:
  list      List stored token URI configurations
  count     Count stored token URI configurations
  stats     Get aggregated configuration statistics

ENVIRONMENT VARIABLES:
  DATABASE_URL      PostgreSQL connection string (required for postgres)
  DATABASE_TYPE     Database type: postgres or memory (default: memory)
  DB_SCHEMA         PostgreSQL schema name (default: tokenmeta)
  DEFAULT_BASE_URI  Collection default base URI (memory only)

  Configuration can be loaded from a .env file in the current directory.
  Command line environment variables override .env file values.

EXAMPLES:
  # List configured tokens
  admin list

  # List with a page size
  admin list --limit=10

  # Continue after a token id (keyset cursor)
  admin list --after-id=499 --limit=10

  # Count configured tokens
  admin count

  # Get statistics
  admin stats

  # Output as JSON
  admin list --json
  admin stats --json

OPTIONS:
  --after-id=<id>   Return only tokens with a strictly greater id (list only)
  --limit=<n>       Maximum results (list only, default: 100)
  --json            Output as JSON
`

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	// Check for help
	if command == "help" || command == "--help" || command == "-h" {
		fmt.Println(usage)
		os.Exit(0)
	}

	// Create admin service
	adminSvc, err := createAdminService()
	if err != nil {
		log.Fatalf("Failed to create admin service: %v", err)
	}

	ctx := context.Background()

	// Parse common flags
	filters, useJSON := parseFilters(os.Args[2:])

	// Execute command
	switch command {
	case "list":
		handleList(ctx, adminSvc, filters, useJSON)
	case "count":
		handleCount(ctx, adminSvc, useJSON)
	case "stats":
		handleStats(ctx, adminSvc, useJSON)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func createAdminService() (admin.AdminService, error) {
	dbType := getEnv("DATABASE_TYPE", "memory")

	switch dbType {
	case "postgres":
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for postgres")
		}

		dbSchema := getEnv("DB_SCHEMA", "tokenmeta")

		// Connect to postgres
		poolConfig, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse database URL: %w", err)
		}

		// Set search_path
		poolConfig.ConnConfig.RuntimeParams["search_path"] = dbSchema

		pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		// Test connection
		if err := pool.Ping(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		store := repopg.NewWithPool(pool, os.Getenv("DEFAULT_BASE_URI"))
		return admin.New(store), nil

	case "memory":
		store := memory.New(os.Getenv("DEFAULT_BASE_URI"))
		return admin.New(store), nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s (use 'postgres' or 'memory')", dbType)
	}
}

func parseFilters(args []string) (admin.TokenFilters, bool) {
	filters := admin.TokenFilters{}
	useJSON := false

	// Default pagination
	defaultLimit := 100
	filters.Limit = &defaultLimit

	for _, arg := range args {
		if arg == "--json" {
			useJSON = true
			continue
		}

		// Parse key=value flags
		key, value := parseFlag(arg)

		switch key {
		case "after-id":
			if id, err := tokenmeta.ParseTokenID(value); err == nil {
				filters.AfterID = &id
			}
		case "limit":
			if n, err := strconv.Atoi(value); err == nil {
				filters.Limit = &n
			}
		}
	}

	return filters, useJSON
}

func parseFlag(arg string) (string, string) {
	if len(arg) > 2 && arg[:2] == "--" {
		arg = arg[2:]
		for i, c := range arg {
			if c == '=' {
				return arg[:i], arg[i+1:]
			}
		}
		return arg, "true"
	}
	return "", ""
}

func handleList(ctx context.Context, adminSvc admin.AdminService, filters admin.TokenFilters, useJSON bool) {
	resp, err := adminSvc.ListConfiguredTokens(ctx, admin.ListTokensRequest{
		Filters: filters,
	})
	if err != nil {
		log.Fatalf("Failed to list token configurations: %v", err)
	}

	if useJSON {
		data, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(data))
		return
	}

	// Table output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TOKEN ID\tEXPLICIT URI\tBASE URI\tID IN PATH\tCONFIGURED\n")
	fmt.Fprintf(w, "────────────\t────────────────────────────────\t────────────────────────────────\t──────────\t──────────\n")

	for _, entry := range resp.Entries {
		explicitURI := entry.Config.ExplicitURI
		if explicitURI == "" {
			explicitURI = "-"
		}
		baseURI := entry.Config.BaseURI
		if baseURI == "" {
			baseURI = "-"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%t\n",
			entry.TokenID.String(),
			truncate(explicitURI, 32),
			truncate(baseURI, 32),
			entry.Config.UseIDInPath,
			entry.Config.IsConfigured,
		)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d", len(resp.Entries))
	if resp.HasMore && resp.NextAfterID != nil {
		fmt.Printf(" (has more, use --after-id=%s to continue)", resp.NextAfterID.String())
	}
	fmt.Println()
}

func handleCount(ctx context.Context, adminSvc admin.AdminService, useJSON bool) {
	resp, err := adminSvc.CountConfiguredTokens(ctx)
	if err != nil {
		log.Fatalf("Failed to count token configurations: %v", err)
	}

	if useJSON {
		data, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Total count: %d\n", resp.Count)
}

func handleStats(ctx context.Context, adminSvc admin.AdminService, useJSON bool) {
	resp, err := adminSvc.GetStatistics(ctx)
	if err != nil {
		log.Fatalf("Failed to get statistics: %v", err)
	}

	if useJSON {
		data, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(data))
		return
	}

	stats := resp.Statistics

	fmt.Println("=== Token URI Configuration Statistics ===")
	fmt.Printf("\nTotal Configured: %d\n", stats.TotalConfigured)
	fmt.Println("\nBy Kind:")
	fmt.Printf("  %-20s: %d\n", "explicit URIs", stats.ExplicitURIs)
	fmt.Printf("  %-20s: %d\n", "base path configs", stats.BasePathConfigs)
	fmt.Printf("  %-20s: %d\n", "id appended to path", stats.IDInPath)

	fmt.Printf("\nComputed at: %s\n", resp.ComputedAt.Format(time.RFC3339))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
