package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mikey/phishing-detector/internal/adapters/sources"
	"github.com/mikey/phishing-detector/internal/factory"
	"github.com/mikey/phishing-detector/internal/logging"
	"go.uber.org/zap"
)

var (
	inputs   = flag.String("inputs", "", "Comma-separated keyword files (.txt, or .csv read by first column)")
	output   = flag.String("output", "", "Output file (stdout if not specified)")
	maxWords = flag.Int("max-words", 5, "Drop phrases longer than this many words (0 keeps all)")
	builtin  = flag.Bool("builtin", false, "Include the built-in keyword list")
	verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog  = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var keywordSources []sources.KeywordSource
	for _, path := range strings.Split(*inputs, ",") {
		if path = strings.TrimSpace(path); path != "" {
			keywordSources = append(keywordSources, factory.KeywordSourceFor(path))
		}
	}
	if *builtin {
		keywordSources = append(keywordSources, sources.Embedded{})
	}
	if len(keywordSources) == 0 {
		logger.Fatal("No keyword sources given, use -inputs or -builtin")
	}

	keywords, err := sources.LoadKeywords(*maxWords, keywordSources...)
	if err != nil {
		logger.Fatal("Failed to load keywords", zap.Error(err))
	}

	var w io.Writer = os.Stdout
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			logger.Fatal("Failed to create output file", zap.Error(err), zap.String("file", *output))
		}
		defer file.Close()
		w = file
	}

	if err := sources.WriteKeywords(w, keywords); err != nil {
		logger.Fatal("Failed to write keywords", zap.Error(err))
	}

	logger.Info("Keyword list built",
		zap.Int("sources", len(keywordSources)),
		zap.Int("keywords", len(keywords)))
}
