package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/patelvedant312/team-matching/internal/logger"
	"github.com/patelvedant312/team-matching/internal/matching"
)

func doMatch(inputFile, configFile, outFile string, stdout io.Writer) error {
	engine, in, err := load(inputFile, configFile)
	if err != nil {
		return err
	}

	result, err := engine.Run(in)
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	if outFile == "" {
		return writeResult(stdout, result)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("create output file failed: %w", err)
	}
	if err := writeResult(f, result); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file failed: %w", err)
	}

	fmt.Fprintf(stdout, "assignments: %d, unfilled: %d, slots: %d\n",
		len(result.Assignments), result.UnfilledTotal(), result.TotalSlots)
	return nil
}

func doValidate(inputFile, configFile string, stdout io.Writer) error {
	engine, in, err := load(inputFile, configFile)
	if err != nil {
		return err
	}
	if err := engine.Validate(in); err != nil {
		return err
	}

	demand := matching.ExpandDemand(in.Projects)
	fmt.Fprintf(stdout, "ok: %d projects, %d resources, %d slots\n",
		len(in.Projects), len(in.Resources), len(demand.Slots))
	return nil
}

func load(inputFile, configFile string) (*matching.Engine, matching.Input, error) {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return nil, matching.Input{}, fmt.Errorf("load config file failed: %w", err)
	}

	in, err := loadInput(inputFile)
	if err != nil {
		return nil, matching.Input{}, fmt.Errorf("load input file failed: %w", err)
	}

	engine, err := matching.NewEngine(cfg, logger.L())
	if err != nil {
		return nil, matching.Input{}, fmt.Errorf("invalid config: %w", err)
	}
	return engine, in, nil
}

// loadConfig читает YAML поверх значений по умолчанию: отсутствующие
// в файле поля остаются дефолтными.
func loadConfig(path string) (matching.Config, error) {
	cfg := matching.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadInput(path string) (matching.Input, error) {
	var in matching.Input
	data, err := os.ReadFile(path)
	if err != nil {
		return in, err
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, err
	}
	return in, nil
}

func writeResult(w io.Writer, result *matching.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("write result failed: %w", err)
	}
	return nil
}
