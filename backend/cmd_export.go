package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnTengye/contractdesk/backend/export"
	"github.com/AnTengye/contractdesk/backend/model"
	"github.com/AnTengye/contractdesk/backend/pipeline"
	"github.com/AnTengye/contractdesk/backend/service"
)

type exportOptions struct {
	ledger     string
	view       string
	status     string
	renewal    string
	dept       string
	yearColumn string
	year       string
	file       string
	search     string
	format     string
	out        string
	today      string
}

var exportOpts exportOptions

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a filtered ledger from the seed file",
	Long: `Runs the seed file through the same filter and sort stages as the table
and writes every matching row as CSV or XLSX.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		seed, err := service.LoadSeed(cfg.Store.SeedFile)
		if err != nil {
			return err
		}
		path, n, err := runExport(seed, exportOpts, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", n, path)
		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportOpts.ledger, "ledger", service.LedgerContracts, "ledger to export (contracts or lending)")
	f.StringVar(&exportOpts.view, "view", "ALL", "view: ALL, HOME, INVALID, UPCOMING, EXPIRED or OVERDUE")
	f.StringVar(&exportOpts.status, "status", "ALL", "status bucket: ALL, UPCOMING, EXPIRED or OVERDUE")
	f.StringVar(&exportOpts.renewal, "renewal", "ALL", "renewal flag: ALL, Y or N")
	f.StringVar(&exportOpts.dept, "dept", pipeline.DepartmentAll, "department")
	f.StringVar(&exportOpts.yearColumn, "year-col", "", "date column of the year filter")
	f.StringVar(&exportOpts.year, "year", "", "four-digit year")
	f.StringVar(&exportOpts.file, "file", "ALL", "attachment presence: ALL, HAS or NONE")
	f.StringVarP(&exportOpts.search, "query", "q", "", "free-text search")
	f.StringVar(&exportOpts.format, "format", string(export.FormatCSV), "csv or xlsx")
	f.StringVarP(&exportOpts.out, "out", "o", "", "output path (default: dated file name in the working directory)")
	f.StringVar(&exportOpts.today, "today", "", "evaluate date buckets as of this yyyy/MM/dd day")
}

func (o exportOptions) query(now time.Time) (pipeline.Query, error) {
	view, err := pipeline.ParseView(o.view)
	if err != nil {
		return pipeline.Query{}, err
	}
	col, err := pipeline.ParseDateColumn(o.yearColumn)
	if err != nil {
		return pipeline.Query{}, err
	}
	preds := pipeline.Predicates{
		Status:     pipeline.Status(strings.ToUpper(o.status)),
		Renewal:    pipeline.RenewalFilter(strings.ToUpper(o.renewal)),
		Department: o.dept,
		Year:       pipeline.YearFilter{Column: col, Year: o.year},
		Attachment: pipeline.AttachmentFilter(strings.ToUpper(o.file)),
		Search:     o.search,
	}
	if err := preds.Validate(); err != nil {
		return pipeline.Query{}, err
	}

	today := model.DateOf(now)
	if o.today != "" {
		today = model.ParseDate(o.today)
		if !today.Valid() {
			return pipeline.Query{}, fmt.Errorf("invalid --today %q, want yyyy/MM/dd", o.today)
		}
	}
	return pipeline.Query{Today: today, View: view, Predicates: preds.Normalize()}, nil
}

// runExport writes the filtered ledger and returns the path and row count.
// Nothing is written when no row matches.
func runExport(seed *service.SeedFile, o exportOptions, now time.Time) (string, int, error) {
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return "", 0, err
	}
	q, err := o.query(now)
	if err != nil {
		return "", 0, err
	}

	ledgers, err := service.NewLedgers(seed)
	if err != nil {
		return "", 0, err
	}
	store := ledgers.Get(o.ledger)
	if store == nil {
		return "", 0, fmt.Errorf("unknown ledger %q", o.ledger)
	}

	rows := pipeline.Run(store.Snapshot().Records, q)
	var buf bytes.Buffer
	if err := export.Write(&buf, format, rows); err != nil {
		return "", 0, err
	}

	path := o.out
	if path == "" {
		path = format.Filename(now)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", 0, fmt.Errorf("failed to write export: %w", err)
	}
	slog.Debug("export written", "path", path, "rows", len(rows), "format", format)
	return path, len(rows), nil
}
