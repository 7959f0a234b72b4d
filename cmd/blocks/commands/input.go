package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/tradeblocks/internal/blocks"
	"github.com/wonny/tradeblocks/internal/contracts"
)

// inputFile is the JSON file format accepted by --input.
// A bare array of entries is accepted as well.
type inputFile struct {
	Name            string                       `json:"name"`
	Entries         []contracts.EquityCurveEntry `json:"entries"`
	Trades          []contracts.Trade            `json:"trades"`
	DailyLogs       []contracts.DailyLog         `json:"daily_logs"`
	StartingCapital float64                      `json:"starting_capital"`
}

func (f inputFile) source() contracts.BlockSource {
	if len(f.Trades) > 0 || len(f.DailyLogs) > 0 {
		return contracts.TradeSource{
			Trades:          f.Trades,
			DailyLogs:       f.DailyLogs,
			StartingCapital: f.StartingCapital,
		}
	}
	return contracts.EquityCurveSource{Entries: f.Entries}
}

// readInput loads one --input file ("-" reads stdin)
func readInput(path string) (*inputFile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var f inputFile
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &f.Entries)
	} else {
		err = json.Unmarshal(trimmed, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if f.Name == "" && path != "-" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &f, nil
}

// loadInputEntries normalizes one --input file.
// keepNames keeps per-record strategy names (correlation input).
func loadInputEntries(path string, keepNames bool) (string, []contracts.EquityCurveEntry, error) {
	f, err := readInput(path)
	if err != nil {
		return "", nil, err
	}

	strategy := f.Name
	if keepNames {
		strategy = ""
	}
	entries, err := blocks.Normalize(f.source(), strategy)
	if err != nil {
		return "", nil, err
	}
	if keepNames {
		for i := range entries {
			if entries[i].StrategyName == "" {
				entries[i].StrategyName = f.Name
			}
		}
	}
	return f.Name, entries, nil
}
