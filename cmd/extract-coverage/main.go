// Command extract-coverage prints the coverage fields of one declaration page
// and writes them next to the input as <name>_output.txt.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/coverage-extractor/constants"
	"github.com/joseph-ayodele/coverage-extractor/internal/app"
	"github.com/joseph-ayodele/coverage-extractor/internal/common"
	"github.com/joseph-ayodele/coverage-extractor/internal/export"
)

func main() {
	mode := flag.String("mode", "", "extraction mode: pattern or llm (default from EXTRACT_MODE)")
	xlsxPath := flag.String("xlsx", "", "also write the result as an XLSX workbook to this path")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: extract-coverage [-mode pattern|llm] [-xlsx out.xlsx] <input_file.txt|input_file.pdf>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Println("Usage: extract-coverage <input_file.txt|input_file.pdf>")
		os.Exit(1)
	}
	inputPath := flag.Arg(0)

	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stderr, cfg.Log)

	ctx := context.Background()
	proc, closeModel, err := app.NewProcessor(ctx, cfg, logger)
	if err != nil {
		logger.Error("init.failed", "err", err)
		os.Exit(1)
	}
	if closeModel != nil {
		defer func() { _ = closeModel() }()
	}

	out, err := proc.Process(ctx, inputPath, strings.ToLower(*mode))
	if err != nil {
		logger.Error("extract.failed", "path", inputPath, "err", err)
		os.Exit(1)
	}

	if constants.NormalizeExt(filepath.Ext(inputPath)) == constants.FileTypePDF {
		fmt.Print("--- Extracted PDF Text Start ---\n\n")
		fmt.Println(out.Text)
		fmt.Print("\n--- Extracted PDF Text End ---\n\n")
	}

	b, err := json.MarshalIndent(out.Result, "", "  ")
	if err != nil {
		logger.Error("json.encode.failed", "err", err)
		os.Exit(1)
	}
	fmt.Println(string(b))

	outputFile := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "_output.txt"
	if err := os.WriteFile(outputFile, b, 0o644); err != nil {
		logger.Error("output.write.failed", "path", outputFile, "err", err)
		os.Exit(1)
	}
	fmt.Printf("\nData written to %s\n", outputFile)

	if *xlsxPath != "" {
		if err := export.NewService(logger).SaveCoverageXLSX(out.Result, *xlsxPath); err != nil {
			logger.Error("xlsx.write.failed", "path", *xlsxPath, "err", err)
			os.Exit(1)
		}
		fmt.Printf("Workbook written to %s\n", *xlsxPath)
	}
}
