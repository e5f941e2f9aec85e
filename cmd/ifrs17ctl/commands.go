package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	apperrors "github.com/ifrs17-reporting/internal/errors"
	"github.com/ifrs17-reporting/internal/ifrs17"
	"github.com/ifrs17-reporting/internal/logging"
)

// env is shared by every command: the data file flag and the output streams.
type env struct {
	dataPath *string
	verbose  *bool
	stdout   io.Writer
	stderr   io.Writer
}

func newEnv(flags *flag.FlagSet, stdout, stderr io.Writer) *env {
	defaultPath := os.Getenv("IFRS17_DATA_PATH")
	if defaultPath == "" {
		defaultPath = "ifrs17_sample_data.json"
	}
	return &env{
		dataPath: flags.String("data", defaultPath, "Path to the IFRS 17 JSON data file"),
		verbose:  flags.Bool("v", false, "Log snapshot loading to stderr"),
		stdout:   stdout,
		stderr:   stderr,
	}
}

func register(c *subcommands.Commander, e *env) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&metadataCmd{env: e}, "reports")
	c.Register(&summaryCmd{env: e}, "reports")
	c.Register(&dashboardCmd{env: e}, "reports")
	c.Register(&trendCmd{env: e}, "reports")
	c.Register(&compareCmd{env: e}, "reports")
	c.Register(&reconcileCmd{env: e}, "reports")
	c.Register(&dataCmd{env: e}, "data")
}

func (e *env) engine() *ifrs17.Engine {
	level := logging.LevelError
	if *e.verbose {
		level = logging.LevelInfo
	}
	logger := logging.NewLoggerWithOutput(level, logging.FormatText, e.stderr)
	return ifrs17.NewEngine(ifrs17.NewFileStore(*e.dataPath, logger))
}

// print writes v as indented JSON, or reports err.
func (e *env) print(v interface{}, err error) subcommands.ExitStatus {
	if err != nil {
		if apperrors.IsDataUnavailable(err) {
			fmt.Fprintf(e.stderr, "data unavailable: %v\n", apperrors.Categorize(err).Message)
		} else {
			fmt.Fprintln(e.stderr, err)
		}
		return subcommands.ExitFailure
	}

	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(e.stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type metadataCmd struct{ *env }

func (*metadataCmd) Name() string     { return "metadata" }
func (*metadataCmd) Synopsis() string { return "print reporting date, currency and portfolios" }
func (*metadataCmd) Usage() string {
	return `ifrs17ctl metadata

  Prints the metadata section of the data file.
`
}
func (*metadataCmd) SetFlags(*flag.FlagSet) {}

func (c *metadataCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.print(c.engine().Metadata(ctx))
}

type summaryCmd struct{ *env }

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the dashboard summary" }
func (*summaryCmd) Usage() string {
	return `ifrs17ctl summary

  Prints headline totals, trend percentages and the per-portfolio breakdown.
`
}
func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.print(c.engine().DashboardSummary(ctx))
}

type dashboardCmd struct{ *env }

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "print every dashboard view at once" }
func (*dashboardCmd) Usage() string {
	return `ifrs17ctl dashboard

  Prints the summary, both trend series and the portfolio comparison.
`
}
func (*dashboardCmd) SetFlags(*flag.FlagSet) {}

func (c *dashboardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.print(c.engine().Dashboard(ctx))
}

type trendCmd struct {
	*env
	kind string
}

func (*trendCmd) Name() string     { return "trend" }
func (*trendCmd) Synopsis() string { return "print closing balances by cohort year" }
func (*trendCmd) Usage() string {
	return `ifrs17ctl trend [-kind liability|csm]

  Prints a chart series of closing liability or closing CSM per cohort year.
`
}

func (c *trendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "liability", "Series to print: liability or csm")
}

func (c *trendCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch c.kind {
	case "liability":
		return c.print(c.engine().LiabilityTrend(ctx))
	case "csm":
		return c.print(c.engine().CSMTrend(ctx))
	default:
		fmt.Fprintf(c.stderr, "unknown trend kind %q (want liability or csm)\n", c.kind)
		return subcommands.ExitUsageError
	}
}

type compareCmd struct{ *env }

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "print the portfolio comparison table" }
func (*compareCmd) Usage() string {
	return `ifrs17ctl compare

  Prints one row per portfolio with premium, claims, loss ratio, liability and CSM.
`
}
func (*compareCmd) SetFlags(*flag.FlagSet) {}

func (c *compareCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.print(c.engine().PortfolioComparison(ctx))
}

type reconcileCmd struct {
	*env
	kind string
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "print the liability or CSM reconciliation" }
func (*reconcileCmd) Usage() string {
	return `ifrs17ctl reconcile [-kind liability|csm]

  Prints the opening-to-closing reconciliation rows and their column totals.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "liability", "Reconciliation to print: liability or csm")
}

func (c *reconcileCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch c.kind {
	case "liability":
		return c.print(c.engine().LiabilityReconciliation(ctx))
	case "csm":
		return c.print(c.engine().CSMReconciliation(ctx))
	default:
		fmt.Fprintf(c.stderr, "unknown reconciliation kind %q (want liability or csm)\n", c.kind)
		return subcommands.ExitUsageError
	}
}

type dataCmd struct {
	*env
	portfolio string
	cohort    int
}

func (*dataCmd) Name() string     { return "data" }
func (*dataCmd) Synopsis() string { return "print raw records, optionally filtered" }
func (*dataCmd) Usage() string {
	return `ifrs17ctl data [-portfolio <name>] [-cohort <year>]

  Prints the raw collections, restricted to the given portfolio and/or cohort year.
`
}

func (c *dataCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "portfolio", "", "Only records of this portfolio")
	f.IntVar(&c.cohort, "cohort", 0, "Only records of this cohort year (0 for all)")
}

func (c *dataCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter := ifrs17.SliceFilter{Portfolio: c.portfolio}
	if c.cohort != 0 {
		year := c.cohort
		filter.CohortYear = &year
	}
	return c.print(c.engine().Data(ctx, filter))
}
