// Package main provides the CLI entry point for gridsquish-go.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish"
	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/models"
	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/output"
	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/parser"
	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/server"
	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/store"
)

var (
	outputPath string
	pretty     bool
	verbose    bool
	sheetName  string
	at         int
	count      int
	listenAddr string
	dbPath     string
	storePath  string
	bookName   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gridsquish",
		Short: "Compact spreadsheet formula grids",
		Long: `gridsquish-go compacts fill-down formulas of spreadsheet sheets into
an invertible JSON snapshot and restores them.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	squishCmd := &cobra.Command{
		Use:   "squish [input.xlsx]",
		Short: "Compact every sheet of a workbook into a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runSquish,
	}
	squishCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	squishCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	squishCmd.Flags().StringVar(&sheetName, "sheet", "", "Only output the compact form of this sheet")
	squishCmd.Flags().StringVar(&storePath, "db", "", "Snapshot database to store the workbook in")
	squishCmd.Flags().StringVar(&bookName, "book", "", "Workbook name in the snapshot database")
	squishCmd.MarkFlagsRequiredTogether("db", "book")

	unsquishCmd := &cobra.Command{
		Use:   "unsquish [snapshot.json]",
		Short: "Restore a workbook from a JSON snapshot or a snapshot database",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runUnsquish,
	}
	unsquishCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output xlsx path (required)")
	unsquishCmd.Flags().StringVar(&storePath, "db", "", "Snapshot database to read the workbook from")
	unsquishCmd.Flags().StringVar(&bookName, "book", "", "Workbook name in the snapshot database")
	_ = unsquishCmd.MarkFlagRequired("output")
	unsquishCmd.MarkFlagsRequiredTogether("db", "book")

	statsCmd := &cobra.Command{
		Use:   "stats [input.xlsx]",
		Short: "Report how well each sheet compacts",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}
	statsCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the codec and a snapshot store over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&dbPath, "db", "gridsquish.db", "Snapshot database path")

	rootCmd.AddCommand(squishCmd, unsquishCmd, statsCmd, serveCmd)
	for _, kind := range []gridsquish.EditKind{
		gridsquish.EditInsertRows,
		gridsquish.EditDeleteRows,
		gridsquish.EditInsertColumns,
		gridsquish.EditDeleteColumns,
	} {
		rootCmd.AddCommand(newEditCmd(kind))
	}
	return rootCmd
}

func newEditCmd(kind gridsquish.EditKind) *cobra.Command {
	name := strings.ReplaceAll(strings.Replace(string(kind), "columns", "cols", 1), "_", "-")
	editCmd := &cobra.Command{
		Use:   name + " [snapshot.json]",
		Short: "Apply " + strings.ReplaceAll(string(kind), "_", " ") + " to one sheet of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(args[0], gridsquish.Edit{Kind: kind, At: at, Count: count})
		},
	}
	editCmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet to edit (required)")
	editCmd.Flags().IntVar(&at, "at", 0, "0-based index of the first inserted or deleted row/column")
	editCmd.Flags().IntVar(&count, "count", 1, "Number of rows/columns")
	editCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	editCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	_ = editCmd.MarkFlagRequired("sheet")
	return editCmd
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func codecOptions() gridsquish.Options {
	opts := gridsquish.DefaultOptions()
	opts.Logger = newLogger()
	return opts
}

func runSquish(cmd *cobra.Command, args []string) error {
	wb, err := readWorkbook(args[0])
	if err != nil {
		return err
	}

	snap := gridsquish.SquishWorkbook(wb, codecOptions())

	if bookName != "" {
		if err := storeSnapshot(snap); err != nil {
			return err
		}
	}

	var jsonData []byte
	if sheetName != "" {
		compact, ok := snap.Sheets[sheetName]
		if !ok {
			return fmt.Errorf("sheet %q not found in %s", sheetName, args[0])
		}
		jsonData, err = output.CompactToJSON(compact, pretty)
	} else {
		jsonData, err = output.SnapshotToJSON(&snap, pretty)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return writeOutput(jsonData)
}

func runUnsquish(cmd *cobra.Command, args []string) error {
	var (
		snap models.Snapshot
		err  error
	)
	switch {
	case bookName != "":
		snap, err = loadSnapshot()
	case len(args) == 1:
		snap, err = readSnapshot(args[0])
	default:
		err = errors.New("a snapshot file or --db and --book is required")
	}
	if err != nil {
		return err
	}

	logger := newLogger()
	opts := gridsquish.DefaultOptions()
	opts.Logger = logger

	// corrupt sheets are left out; the clean ones are still written
	wb, restoreErr := gridsquish.UnsquishWorkbook(snap, opts)
	if restoreErr != nil {
		if len(wb) == 0 {
			return fmt.Errorf("restore failed: %w", restoreErr)
		}
		logger.Warn("skipping corrupt sheets", slog.Any("error", restoreErr))
	}

	if err := parser.SaveWorkbook(outputPath, wb); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if restoreErr != nil {
		return fmt.Errorf("restore incomplete: %w", restoreErr)
	}
	return nil
}

func runEdit(path string, edit gridsquish.Edit) error {
	snap, err := readSnapshot(path)
	if err != nil {
		return err
	}

	compact, ok := snap.Sheets[sheetName]
	if !ok {
		return fmt.Errorf("sheet %q not found in %s", sheetName, path)
	}
	adapted, err := gridsquish.ApplyEdit(compact, edit, codecOptions())
	if err != nil {
		return fmt.Errorf("edit sheet %q: %w", sheetName, err)
	}
	snap.Sheets[sheetName] = adapted

	jsonData, err := output.SnapshotToJSON(&snap, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return writeOutput(jsonData)
}

// sheetStats is one line of the stats report.
type sheetStats struct {
	Sheet string `json:"sheet"`
	gridsquish.Stats
	Ratio float64 `json:"ratio"`
}

func runStats(cmd *cobra.Command, args []string) error {
	wb, err := readWorkbook(args[0])
	if err != nil {
		return err
	}

	opts := codecOptions()
	var report []sheetStats
	var total gridsquish.Stats
	for _, name := range wb.SheetNames() {
		stats, err := gridsquish.ComputeStats(wb[name], gridsquish.SquishSheet(wb[name], opts))
		if err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
		report = append(report, sheetStats{Sheet: name, Stats: stats, Ratio: stats.Ratio()})
		total = total.Add(stats)
	}
	report = append(report, sheetStats{Sheet: "*", Stats: total, Ratio: total.Ratio()})

	jsonData, err := output.ToJSON(report, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Println(string(jsonData))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	gin.SetMode(gin.ReleaseMode)

	snapshots, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	opts := gridsquish.DefaultOptions()
	opts.Logger = logger
	router := server.SetupRouter(server.NewController(snapshots, opts), logger)

	logger.Info("listening", slog.String("addr", listenAddr), slog.String("db", dbPath))
	return http.ListenAndServe(listenAddr, router)
}

func readWorkbook(path string) (models.Workbook, error) {
	// Validate input file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	wb, err := parser.OpenWorkbook(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return wb, nil
}

func storeSnapshot(snap models.Snapshot) error {
	snapshots, err := store.Open(storePath)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	return snapshots.PutSnapshot(bookName, snap)
}

func loadSnapshot() (models.Snapshot, error) {
	snapshots, err := store.Open(storePath)
	if err != nil {
		return models.Snapshot{}, err
	}
	defer snapshots.Close()

	return snapshots.Snapshot(bookName)
}

func readSnapshot(path string) (models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Snapshot{}, err
	}
	return gridsquish.DecodeSnapshot(data)
}

func writeOutput(jsonData []byte) error {
	if outputPath == "" {
		fmt.Println(string(jsonData))
		return nil
	}
	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
