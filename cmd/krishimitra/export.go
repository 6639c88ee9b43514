package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/krishimitra/krishi_mitra/internal/config"
	"github.com/krishimitra/krishi_mitra/internal/services/records"
)

var exportTable string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a CSV report from the configured store to stdout",
	RunE:  runExport,
}

func init() {
	names := make([]string, 0, len(records.Reports))
	for n := range records.Reports {
		names = append(names, n)
	}
	sort.Strings(names)
	exportCmd.Flags().StringVarP(&exportTable, "table", "t", "all", "report to export: "+strings.Join(names, ", "))
}

func runExport(cmd *cobra.Command, _ []string) error {
	if _, ok := records.Reports[exportTable]; !ok {
		return fmt.Errorf("unknown table %q", exportTable)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	st, closeStore, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	return records.ExportCSV(cmd.Context(), st, cmd.OutOrStdout(), exportTable)
}
