package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"frontierBot/internal/config"
	"frontierBot/internal/finance"
)

// readDataset opens the CSV at name, or stdin when name is "-" or empty.
func readDataset(name string) (finance.Dataset, error) {
	if name == "" || name == "-" {
		return finance.ParseDatasetCSV(os.Stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return finance.ParseDatasetCSV(f)
}

// common holds the flags shared by every subcommand.
type common struct {
	file      string
	weights   string
	precision int
}

func (c *common) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "-", "CSV file with X and Y columns ('-' for stdin)")
	f.StringVar(&c.weights, "w", "", "weights of X, space or comma separated (default 0 0.2 0.4 0.6 0.8 1)")
	f.IntVar(&c.precision, "p", config.LoadShared().Precision, fmt.Sprintf("decimals shown (0-%d)", finance.MaxPrecision))
}

func (c *common) report() (*finance.FrontierReport, error) {
	weights, err := finance.ParseWeights(c.weights)
	if err != nil {
		return nil, err
	}
	ds, err := readDataset(c.file)
	if err != nil {
		return nil, err
	}
	return finance.BuildFrontierReport(ds, weights, finance.ClampPrecision(c.precision))
}

type statsCmd struct {
	common
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "print mean, population std dev and correlation of X and Y" }
func (*statsCmd) Usage() string {
	return `frontier stats [-f <file.csv>] [-p <decimals>]

  Prints the summary statistics of the X and Y columns.
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *statsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.report()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(finance.FormatStatisticsText(r.Statistics, r.Precision))
	return subcommands.ExitSuccess
}

type frontierCmd struct {
	common
	style string
	plain bool
}

func (*frontierCmd) Name() string     { return "frontier" }
func (*frontierCmd) Synopsis() string { return "print statistics and the frontier table" }
func (*frontierCmd) Usage() string {
	return `frontier frontier [-f <file.csv>] [-w "0 0.5 1"] [-p <decimals>] [-style dark|light|notty] [-plain]

  Prints the statistics and the return/risk of each portfolio of the weight grid.
`
}

func (c *frontierCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.style, "style", "dark", "glamour style used to render the report")
	f.BoolVar(&c.plain, "plain", false, "print plain text instead of rendered markdown")
}

func (c *frontierCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.report()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.plain {
		fmt.Print(finance.FormatStatisticsText(r.Statistics, r.Precision))
		fmt.Println()
		fmt.Print(finance.FormatFrontierTable(r.Points, r.Precision))
		return subcommands.ExitSuccess
	}
	out, err := glamour.Render(finance.FormatFrontierMarkdown(r), c.style)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

type chartCmd struct {
	common
	out   string
	bars  string
	title string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "write the risk/return frontier chart as PNG" }
func (*chartCmd) Usage() string {
	return `frontier chart [-f <file.csv>] [-w "0 0.5 1"] -o frontier.png [-bars allocations.png]

  Writes the efficient frontier chart, and optionally the per-portfolio bar chart.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.out, "o", "frontier.png", "output PNG for the frontier chart")
	f.StringVar(&c.bars, "bars", "", "optional output PNG for the return/risk bar chart")
	f.StringVar(&c.title, "title", "Efficient Frontier", "chart title")
}

func (c *chartCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.report()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	img, err := finance.MakeFrontierChart(r.Points, c.title)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(c.out, img, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.out, err)
		return subcommands.ExitFailure
	}
	if c.bars != "" {
		bars, err := finance.MakeAllocationChart(r.Points, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(c.bars, bars, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.bars, err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
