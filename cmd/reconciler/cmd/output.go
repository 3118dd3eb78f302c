package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"invoice-reconciliation-service/cmd/reconciler/config"
	"invoice-reconciliation-service/internal/reporter"
	"invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/spf13/viper"
)

const validFormats = "console, json, yaml, csv, xlsx"

// validateOutputFlags checks the report format and destination shared by every command
func validateOutputFlags(format, outputFile string) []error {
	var errs []error

	f := reporter.OutputFormat(strings.ToLower(format))
	if !f.IsValid() {
		errs = append(errs, fmt.Errorf("invalid output format '%s'. Valid formats: %s", format, validFormats))
	} else if f.IsBinary() && outputFile == "" {
		errs = append(errs, fmt.Errorf("output format '%s' needs --output-file", format))
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				errs = append(errs, fmt.Errorf("output directory does not exist: %s", dir))
			}
		}
	}

	return errs
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return errors.FileError(errors.CodeFileNotFound, filePath, err).WithContext("description", description)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, filePath, err).WithContext("description", description)
	}
	file.Close()

	return nil
}

func validateDirExists(dirPath, description string) error {
	info, err := os.Stat(dirPath)
	if os.IsNotExist(err) {
		return errors.FileError(errors.CodeFileNotFound, dirPath, err).WithContext("description", description)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %s", description, dirPath)
	}
	return nil
}

// flagErrors joins the validation failures of a command into one error
func flagErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", FormatValidationErrors(errs))
}

// writeReport renders result to outputFile, or stdout when it is empty
func writeReport(format, outputFile string, result interface{}) error {
	reportConfig, err := config.CreateReportConfig(viper.GetViper(), format)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "report", format, err)
	}

	generator, err := reporter.NewSafeReportGenerator(reportConfig, logger.GetGlobalLogger())
	if err != nil {
		return err
	}

	output := os.Stdout
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return errors.FileError(errors.CodeFilePermission, outputFile, err)
		}
		defer output.Close()
	}

	return generator.GenerateReportSafely(result, output)
}
