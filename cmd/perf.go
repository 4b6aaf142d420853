package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/dietz"
	"github.com/etnz/dietz/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// perfCmd holds the flags for the 'perf' subcommand.
type perfCmd struct {
	start     string
	end       string
	from      string
	to        string
	flowsFile string
	selector  string
	currency  string
	epsilon   float64
	json      bool
}

func (*perfCmd) Name() string     { return "perf" }
func (*perfCmd) Synopsis() string { return "Modified Dietz return over a period" }
func (*perfCmd) Usage() string {
	return `mdz perf -s <date> [-e <date>] -from <value> -to <value> [-flows <file>] [-select <jsonpath>] [-c <currency>] [-epsilon <amount>] [-json]

  Computes the Modified Dietz return of a portfolio worth <from> at the start
  of the period and <to> at its end, given the external cash flows in <file>.

  Cash flows are read as JSONL, one per line:
    {"date":"2020-06-16","amount":-10,"currency":"EUR"}
  or, with -select, extracted from a JSON document with a jsonpath expression.

Usage Examples:
$ mdz perf -s 2020-6-1 -e 2020-7-1 -from 105 -to 100 -flows flows.jsonl
$ mdz perf -s -1y -from 1000 -to 1100 -flows bank.json -select '$.transactions[?(@.type=="transfer")]'
`
}

func (c *perfCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Start of the period (excluded). See ParseInstant for supported formats.")
	f.StringVar(&c.end, "e", "0d", "End of the period (included). Defaults to today.")
	f.StringVar(&c.from, "from", "", "Market value at the start of the period")
	f.StringVar(&c.to, "to", "", "Market value at the end of the period")
	f.StringVar(&c.flowsFile, "flows", "", "File containing the external cash flows, '-' for stdin")
	f.StringVar(&c.selector, "select", "", "jsonpath expression selecting cash flows when the file is a JSON document")
	f.StringVar(&c.currency, "c", defaultCurrency(), "Currency of values and cash flows. Defaults to $"+defaultCurrencyEnv+" or the cash flows currency.")
	f.Float64Var(&c.epsilon, "epsilon", dietz.DefaultEpsilon, "Cash flows whose magnitude is not above epsilon are ignored")
	f.BoolVar(&c.json, "json", false, "Print the result as JSON")
}

func (c *perfCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	configureLogging()

	period, err := parsePeriod(c.start, c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	from, err := parseValue("from", c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := parseValue("to", c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	currency, err := parseCurrency(c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	flows, currency, err := loadCashflows(c.flowsFile, c.selector, currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading cash flows: %v\n", err)
		return subcommands.ExitFailure
	}
	logrus.WithFields(logrus.Fields{
		"file":     c.flowsFile,
		"count":    len(flows),
		"currency": currency,
	}).Debug("cash flows loaded")

	md, err := dietz.NewFromValues(period, from, to, flows, dietz.WithEpsilon(c.epsilon))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing return: %v\n", err)
		return subcommands.ExitFailure
	}
	logrus.WithFields(logrus.Fields{
		"period":         md.Period(),
		"adjustedPeriod": md.AdjustedPeriod(),
		"netCashflows":   len(md.NetCashflowMap()),
		"averageCapital": md.AverageCapital(),
	}).Debug("return computed")

	if c.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(md); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.RenderReport(renderer.NewReport(md, currency)))
	return subcommands.ExitSuccess
}

// parseValue parses a market value flag.
func parseValue(name, value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("missing market value -%s", name)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid market value -%s %q: %w", name, value, err)
	}
	return d.InexactFloat64(), nil
}
