// Command eventpipe-import bulk-loads events from a CSV file directly
// into the event store, bypassing ingestion's dedup-cache and queue
// hop. Expected columns: event_id, occurred_at, user_id, event_type,
// properties_json (optional).
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/nova-metrics/eventpipe/internal/event"
	"github.com/nova-metrics/eventpipe/internal/platform"
	"github.com/nova-metrics/eventpipe/internal/store"
	"github.com/nova-metrics/eventpipe/pkg/logger"
)

func main() {
	batchSize := flag.Int("batch-size", 100, "number of events to insert per transaction")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: eventpipe-import [-batch-size N] <csv-file>")
		os.Exit(1)
	}
	csvPath := flag.Arg(0)

	logger.Init(logger.Config{Level: "INFO", Format: "TEXT"})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := platform.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	db, err := platform.NewDB(cfg.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to event store: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	s := store.New(db)
	if err := s.AutoMigrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate event store: %v\n", err)
		os.Exit(1)
	}

	imported, duplicates, failed, err := run(ctx, s, csvPath, *batchSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		if ctx.Err() != nil {
			os.Exit(130)
		}
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Import complete")
	fmt.Printf("  imported:   %d\n", imported)
	fmt.Printf("  duplicates: %d\n", duplicates)
	fmt.Printf("  failed:     %d\n", failed)
	fmt.Printf("  total:      %d\n", imported+duplicates+failed)

	if failed > 0 {
		fmt.Fprintln(os.Stderr, "warning: some rows failed to parse, see above")
		os.Exit(1)
	}
}

type inserter interface {
	Insert(ctx context.Context, events []event.Event) (inserted int, duplicate int, err error)
}

func run(ctx context.Context, s inserter, csvPath string, batchSize int) (imported, duplicates, failed int, err error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("open %s: %w", csvPath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	var batch []event.Event
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		inserted, dup, err := s.Insert(ctx, batch)
		if err != nil {
			return err
		}
		imported += inserted
		duplicates += dup
		batch = batch[:0]
		return nil
	}

	for {
		if ctx.Err() != nil {
			return imported, duplicates, failed, ctx.Err()
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, duplicates, failed, fmt.Errorf("read row: %w", err)
		}

		e, parseErr := parseRow(row, columns)
		if parseErr != nil {
			logger.L().WarnContext(ctx, "failed to parse event row", "error", parseErr)
			failed++
			continue
		}

		batch = append(batch, e)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return imported, duplicates, failed, err
			}
		}
	}

	if err := flush(); err != nil {
		return imported, duplicates, failed, err
	}
	return imported, duplicates, failed, nil
}

func parseRow(row []string, columns map[string]int) (event.Event, error) {
	col := func(name string) string {
		if idx, ok := columns[name]; ok && idx < len(row) {
			return row[idx]
		}
		return ""
	}

	id, err := uuid.Parse(col("event_id"))
	if err != nil {
		return event.Event{}, fmt.Errorf("invalid event_id: %w", err)
	}

	occurredAt, err := time.Parse(time.RFC3339, col("occurred_at"))
	if err != nil {
		return event.Event{}, fmt.Errorf("invalid occurred_at: %w", err)
	}

	properties := map[string]any{}
	if raw := col("properties_json"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &properties); err != nil {
			return event.Event{}, fmt.Errorf("invalid properties_json: %w", err)
		}
	}

	return event.Event{
		EventID:    id,
		UserID:     col("user_id"),
		EventType:  col("event_type"),
		OccurredAt: occurredAt,
		Properties: properties,
	}, nil
}
