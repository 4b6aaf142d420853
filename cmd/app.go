// Package cmd implements the mdz command line application.
package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/etnz/dietz"
	"github.com/google/subcommands"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&perfCmd{}, "returns")
	c.Register(&flowsCmd{}, "returns")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var verbose = flag.Bool("v", false, "Log diagnostics to stderr")

// stdout is where commands print their result. Replaced in tests.
var stdout io.Writer = os.Stdout

const defaultCurrencyEnv = "MDZ_DEFAULT_CURRENCY"

// defaultCurrency returns the currency used when neither the flag nor the cash flows define one.
func defaultCurrency() string {
	return strings.ToUpper(os.Getenv(defaultCurrencyEnv))
}

// configureLogging sets the logrus level from the global -v flag.
func configureLogging() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// printMarkdown prints md, rendered for the terminal when stdout is one.
func printMarkdown(md string) {
	if f, ok := stdout.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		out, err := glamour.Render(md, "auto")
		if err == nil {
			fmt.Fprint(f, out)
			return
		}
		logrus.WithError(err).Warn("cannot render markdown, printing it raw")
	}
	fmt.Fprint(stdout, md)
}

// parseCurrency returns the upper-cased currency code, empty meaning
// undefined yet.
func parseCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code != "" && money.GetCurrency(code) == nil {
		return "", fmt.Errorf("unknown currency %q", code)
	}
	return code, nil
}

// parsePeriod parses the period from its start and end flags.
func parsePeriod(start, end string) (dietz.Period, error) {
	if start == "" {
		return dietz.Period{}, fmt.Errorf("missing start of the period (-s)")
	}
	s, err := dietz.ParseInstant(start)
	if err != nil {
		return dietz.Period{}, fmt.Errorf("error parsing start: %w", err)
	}
	e, err := dietz.ParseInstant(end)
	if err != nil {
		return dietz.Period{}, fmt.Errorf("error parsing end: %w", err)
	}
	return dietz.NewPeriod(s, e)
}

// loadCashflows reads the cash flows in file. Without a selector, the file is
// JSONL, one cash flow per line. With a selector, the file is a JSON document
// and the selector a jsonpath expression selecting the cash flow objects.
// "-" reads stdin. An empty file name means no cash flows.
func loadCashflows(file, selector, currency string) (dietz.CashflowMap[float64], string, error) {
	if file == "" {
		return dietz.CashflowMap[float64]{}, currency, nil
	}
	var r io.Reader = os.Stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		r = f
	}

	if selector == "" {
		flows, cur, err := dietz.DecodeCashflows(r, currency)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", file, err)
		}
		return flows, cur, nil
	}

	// numbers are kept as json.Number so that amounts reach decimal untouched.
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, "", fmt.Errorf("%s: invalid JSON document: %w", file, err)
	}
	flows, cur, err := dietz.ExtractCashflows(doc, selector, currency)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", file, err)
	}
	return flows, cur, nil
}
