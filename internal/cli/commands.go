package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/simaogato/fundmetrics-backend/internal/adapter/dto"
	"github.com/simaogato/fundmetrics-backend/internal/usecase/metrics"
)

func newMetricsCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print every derived figure of the fund",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validateOutput(); err != nil {
				return err
			}
			fund, cutoff, err := opts.load(cmd.InOrStdin())
			if err != nil {
				return err
			}

			rec := metrics.NewEngine(opts.irrConfig()).CalculateMetrics(fund, cutoff)
			if opts.Output == "json" {
				return writeJSON(cmd.OutOrStdout(), dto.FromMetrics(rec))
			}

			vintage := undefined
			if rec.VintageYear != nil {
				vintage = strconv.Itoa(*rec.VintageYear)
			}
			asOf := rec.AsOf.String()
			if asOf == "" {
				asOf = "latest"
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			rows := [][2]string{
				{"Fund", fund.Name},
				{"As of", asOf},
				{"Vintage", vintage},
				{"Commitment", formatMoney(fund.Commitment, opts.Currency)},
				{"Called capital", formatMoney(rec.CalledCapital, opts.Currency)},
				{"Distributions", formatMoney(rec.TotalDistributions, opts.Currency)},
				{"NAV", formatMoney(rec.NAV, opts.Currency)},
				{"Outstanding commitment", formatMoney(rec.OutstandingCommitment, opts.Currency)},
				{"Investment return", formatMoney(rec.InvestmentReturn, opts.Currency)},
				{"IRR", formatPercent(rec.IRR)},
				{"MOIC", formatMultiple(rec.MOIC)},
				{"DPI", formatMultiple(rec.DPI)},
				{"RVPI", formatMultiple(rec.RVPI)},
				{"TVPI", formatMultiple(rec.TVPI)},
			}
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
			}
			return w.Flush()
		},
	}
}

func newIRRCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "irr",
		Short: "Print the IRR of the normalized cash flow series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validateOutput(); err != nil {
				return err
			}
			fund, cutoff, err := opts.load(cmd.InOrStdin())
			if err != nil {
				return err
			}

			flows := metrics.ParseCashFlowsForIRR(fund, cutoff)
			rate, solveErr := metrics.SolveIRR(flows, opts.irrConfig())

			if opts.Output == "json" {
				out := struct {
					Flows  []metrics.Flow `json:"flows"`
					IRR    *float64       `json:"irr"`
					Reason string         `json:"reason,omitempty"`
				}{Flows: flows}
				if solveErr != nil {
					out.Reason = solveErr.Error()
				} else {
					out.IRR = &rate
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			if solveErr != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "IRR: %s (%v)\n", undefined, solveErr)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "IRR: %.2f%%\n", rate*100)
			return nil
		},
	}
}

func newNavCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nav",
		Short: "Print the NAV projected from the latest valuation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validateOutput(); err != nil {
				return err
			}
			fund, cutoff, err := opts.load(cmd.InOrStdin())
			if err != nil {
				return err
			}

			nav := metrics.LatestNav(fund, cutoff)
			if opts.Output == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"nav": nav.String()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "NAV: %s\n", formatMoney(nav, opts.Currency))
			return nil
		},
	}
}
