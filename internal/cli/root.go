// Package cli implements fundctl, an offline front end to the metrics engine.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/simaogato/fundmetrics-backend/internal/adapter/dto"
	"github.com/simaogato/fundmetrics-backend/internal/domain"
	"github.com/simaogato/fundmetrics-backend/internal/usecase/metrics"
)

// Version is injected at build time via ldflags
var Version = "dev"

// RootOptions holds global CLI flags
type RootOptions struct {
	File     string
	AsOf     string
	Output   string
	Currency string
	Guess    float64
}

// NewRootCmd creates the fundctl root command with its subcommands
func NewRootCmd() *cobra.Command {
	opts := &RootOptions{}

	root := &cobra.Command{
		Use:   "fundctl",
		Short: "Compute private-equity fund metrics from a ledger file",
		Long: `fundctl reads a fund (commitment, cash flows and valuation snapshots) from a
JSON file and prints its IRR, multiples, NAV and commitment figures as of a date.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.File, "file", "f", "", "Fund JSON file, - for stdin (required)")
	flags.StringVar(&opts.AsOf, "as-of", "", "Cutoff date YYYY-MM-DD (default: no cutoff)")
	flags.StringVarP(&opts.Output, "output", "o", "table", "Output format: table|json")
	flags.StringVar(&opts.Currency, "currency", "USD", "ISO currency code for money columns")
	flags.Float64Var(&opts.Guess, "guess", metrics.DefaultIRRConfig().Guess, "Initial IRR guess")

	root.AddCommand(
		newMetricsCmd(opts),
		newIRRCmd(opts),
		newNavCmd(opts),
	)
	return root
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

// load reads the fund file and cutoff named by the global flags
func (o *RootOptions) load(in io.Reader) (*domain.Fund, domain.Date, error) {
	if o.File == "" {
		return nil, domain.Date{}, fmt.Errorf("--file is required")
	}

	r := in
	if o.File != "-" {
		f, err := os.Open(o.File)
		if err != nil {
			return nil, domain.Date{}, fmt.Errorf("failed to open fund file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var raw dto.Fund
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, domain.Date{}, fmt.Errorf("failed to decode fund file: %w", err)
	}
	fund, err := raw.ToDomain()
	if err != nil {
		return nil, domain.Date{}, fmt.Errorf("invalid fund file: %w", err)
	}

	cutoff, err := dto.ParseCutoff(o.AsOf)
	if err != nil {
		return nil, domain.Date{}, fmt.Errorf("invalid --as-of: %w", err)
	}
	return fund, cutoff, nil
}

func (o *RootOptions) irrConfig() metrics.IRRConfig {
	return metrics.DefaultIRRConfig().WithGuess(o.Guess)
}

func (o *RootOptions) validateOutput() error {
	switch o.Output {
	case "table", "json":
		return nil
	}
	return fmt.Errorf("unsupported --output %q, want table or json", o.Output)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
