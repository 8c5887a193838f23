package cmd

import (
	"fmt"

	"github.com/example/wordtrack/internal/excel"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	config := excel.DefaultImportConfig()

	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.csv>",
		Short: "Import vocabulary from an Excel or CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			config.FilePath = args[0]
			result, err := excel.NewImporter(a.store).ImportWords(cmd.Context(), config)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed %d rows: %d created, %d updated\n",
				result.TotalProcessed, result.Created, result.Updated)
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&config.SheetName, "sheet", config.SheetName, "Sheet to read from an Excel file")
	cmd.Flags().IntVar(&config.StartRow, "start-row", config.StartRow, "First data row (1-based)")
	cmd.Flags().StringVar(&config.DefaultTopic, "topic", "", "Topic for rows without one")
	cmd.Flags().StringVar(&config.WordColumn, "word-col", config.WordColumn, "Column with the word")
	cmd.Flags().StringVar(&config.TranslationColumn, "translation-col", config.TranslationColumn, "Column with the translation")
	return cmd
}
