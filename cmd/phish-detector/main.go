package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mikey/phishing-detector/internal/adapters/filter"
	"github.com/mikey/phishing-detector/internal/di"
	"github.com/mikey/phishing-detector/internal/ports"
	"go.uber.org/zap"
)

// phishingExitCode is returned when the message is classified as phishing
const phishingExitCode = 2

var exitCode int

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func run(flags *di.CLIFlags, logger *zap.Logger, emailFilter ports.EmailFilter) error {
	defer logger.Sync()

	// Read email from file or stdin
	var emailReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			logger.Error("Failed to open input file", zap.Error(err), zap.String("file", flags.InputFile))
			return err
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	raw, err := io.ReadAll(emailReader)
	if err != nil {
		logger.Error("Failed to read email", zap.Error(err))
		return err
	}

	email, err := filter.ParseMessage(raw)
	if err != nil {
		logger.Error("Failed to parse email", zap.Error(err))
		return err
	}

	report, err := emailFilter.ProcessEmail(context.Background(), email)
	if err != nil {
		return err
	}

	if report.IsPhishing() {
		exitCode = phishingExitCode
	}
	return nil
}
