package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/dietz"
	"github.com/etnz/dietz/renderer"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// flowsCmd holds the flags for the 'flows' subcommand.
type flowsCmd struct {
	start     string
	end       string
	flowsFile string
	selector  string
	currency  string
	epsilon   float64
	jsonl     bool
}

func (*flowsCmd) Name() string     { return "flows" }
func (*flowsCmd) Synopsis() string { return "net cash flows of a period and their weight" }
func (*flowsCmd) Usage() string {
	return `mdz flows -s <date> [-e <date>] -flows <file> [-select <jsonpath>] [-c <currency>] [-epsilon <amount>] [-jsonl]

  Lists the cash flows that count in the period: strictly after its start, at
  or before its end, and above epsilon in magnitude. Flows on the same instant
  are summed. Each flow is shown with its weight in the period.

  With -jsonl, the net cash flows are written back as JSONL instead.
`
}

func (c *flowsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Start of the period (excluded)")
	f.StringVar(&c.end, "e", "0d", "End of the period (included). Defaults to today.")
	f.StringVar(&c.flowsFile, "flows", "", "File containing the external cash flows, '-' for stdin")
	f.StringVar(&c.selector, "select", "", "jsonpath expression selecting cash flows when the file is a JSON document")
	f.StringVar(&c.currency, "c", defaultCurrency(), "Currency of the cash flows")
	f.Float64Var(&c.epsilon, "epsilon", dietz.DefaultEpsilon, "Cash flows whose magnitude is not above epsilon are ignored")
	f.BoolVar(&c.jsonl, "jsonl", false, "Print the net cash flows as JSONL")
}

func (c *flowsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	configureLogging()

	period, err := parsePeriod(c.start, c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.flowsFile == "" {
		fmt.Fprintln(os.Stderr, "Error: missing cash flows file (-flows)")
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

	// Market values play no part in the net cash flows nor their weight as
	// long as they are not zero.
	md, err := dietz.NewFromValues(period, 1, 1, flows, dietz.WithEpsilon(c.epsilon))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	net := md.NetCashflowMap()
	logrus.WithFields(logrus.Fields{
		"raw":     len(flows),
		"net":     len(net),
		"ignored": len(flows) - len(net),
	}).Debug("cash flows filtered")

	if c.jsonl {
		if err := dietz.EncodeCashflows(stdout, net, currency); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.RenderCashflows(renderer.NewReport(md, currency)))
	return subcommands.ExitSuccess
}
