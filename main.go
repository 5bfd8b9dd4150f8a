package main

import (
	"fmt"
	"os"

	"library-lending/library"

	"github.com/spf13/cobra"
)

const (
	defaultLogFile     = "library_system.log"
	defaultJournalFile = "library_journal.db"
)

func main() {
	var (
		logPath     string
		journalPath string
		seed        bool

		historyLimit int
		historyJSON  bool
	)

	root := &cobra.Command{
		Use:           "library-lending",
		Short:         "Single-branch library catalog, user directory, and lending ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(logPath, journalPath, seed)
		},
	}
	root.PersistentFlags().StringVar(&journalPath, "journal", env("LIBRARY_JOURNAL", defaultJournalFile),
		"path to the activity journal database")
	root.Flags().StringVar(&logPath, "log", env("LIBRARY_LOG", defaultLogFile),
		"path to the plain-text log file")
	root.Flags().BoolVar(&seed, "seed", false, "load sample books and users at startup")

	history := &cobra.Command{
		Use:   "history",
		Short: "Show recent activity recorded in the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(journalPath, historyLimit, historyJSON)
		},
	}
	history.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of entries to show")
	history.Flags().BoolVar(&historyJSON, "json", false, "print entries as JSON lines")
	root.AddCommand(history)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runMenu(logPath, journalPath string, seed bool) error {
	logger, err := library.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logger.Close()

	sinks := library.MultiLogger{logger}

	// A broken journal must not keep the library from operating.
	journal, err := library.OpenJournal(journalPath)
	if err != nil {
		logger.LogError("activity journal unavailable", err)
	} else {
		defer journal.Close()
		sinks = append(sinks, journal)
	}

	service := library.NewLendingService(
		library.NewCatalog(),
		library.NewDirectory(),
		library.NewLedger(),
		sinks,
	)

	logger.Log("System starting...")
	if seed {
		if err := service.SeedSampleData(); err != nil {
			return fmt.Errorf("seed sample data: %w", err)
		}
	}

	newMenu(service, os.Stdin).run()
	logger.Log("System shutting down")
	return nil
}

func runHistory(journalPath string, limit int, asJSON bool) error {
	if _, err := os.Stat(journalPath); err != nil {
		return fmt.Errorf("no journal at %s", journalPath)
	}
	journal, err := library.OpenJournal(journalPath)
	if err != nil {
		return err
	}
	defer journal.Close()

	entries, err := journal.Recent(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No journal entries.")
		return nil
	}

	for _, e := range entries {
		if asJSON {
			line, err := e.JSON()
			if err != nil {
				return err
			}
			fmt.Println(string(line))
			continue
		}
		fmt.Printf("%s  %-5s  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Level, e.Message)
	}
	return nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
