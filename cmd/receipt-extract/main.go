package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tabilog-dev/receipt-engine/internal/engine"
)

// receipt-extract runs the local heuristic pipeline over receipt text and
// prints the enriched result as JSON. Text comes from -file or stdin.
func main() {
	var (
		file     = flag.String("file", "", "path to a receipt text file (default: read stdin)")
		rate     = flag.Float64("rate", 1.0, "exchange rate applied to every amount")
		currency = flag.String("currency", "JPY", "source currency code")
		verbose  = flag.Bool("v", false, "log extraction details to stderr")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	text, err := readInput(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(1)
	}

	if *rate <= 0 {
		fmt.Fprintln(os.Stderr, "rate must be positive")
		os.Exit(1)
	}

	parser := engine.NewParser(engine.Config{Currency: *currency}, logger)
	enriched := engine.Enrich(parser.ParseText(text), *rate)

	out, err := json.MarshalIndent(enriched, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func readInput(file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
