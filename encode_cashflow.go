package dietz

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// cashflowCmd is the json form of a single cash flow.
type cashflowCmd struct {
	Date     *jsonInstant    `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
}

// cashflowSet accumulates exact amounts per instant, in a single currency.
type cashflowSet struct {
	cur     string
	amounts map[time.Time]decimal.Decimal
}

func newCashflowSet(currency string) (*cashflowSet, error) {
	currency = strings.ToUpper(currency)
	if currency != "" && money.GetCurrency(currency) == nil {
		return nil, fmt.Errorf("unknown currency %q", currency)
	}
	return &cashflowSet{cur: currency, amounts: make(map[time.Time]decimal.Decimal)}, nil
}

// add records a cash flow. A missing currency means the set's currency.
func (s *cashflowSet) add(c cashflowCmd) error {
	if c.Date == nil {
		return fmt.Errorf("cash flow without date")
	}
	if c.Currency != "" {
		c.Currency = strings.ToUpper(c.Currency)
		if money.GetCurrency(c.Currency) == nil {
			return fmt.Errorf("unknown currency %q", c.Currency)
		}
		if s.cur == "" {
			s.cur = c.Currency
		}
		if c.Currency != s.cur {
			return fmt.Errorf("cash flow in %s, want %s: %w", c.Currency, s.cur, ErrCurrencyMismatch)
		}
	}
	on := time.Time(*c.Date)
	s.amounts[on] = s.amounts[on].Add(c.Amount)
	return nil
}

func (s *cashflowSet) cashflows() CashflowMap[float64] {
	res := make(CashflowMap[float64], len(s.amounts))
	for on, amount := range s.amounts {
		res[on] = amount.InexactFloat64()
	}
	return res
}

// DecodeCashflows decodes cash flows from a stream of JSONL data, one object
// per line:
//
//	{"date":"2020-06-16T00:00:00Z","amount":-10,"currency":"EUR"}
//
// Amounts on the same instant are summed. The currency is optional on each
// line; when present it must match 'currency', or, if 'currency' is empty, the
// first currency found. The resolved currency is returned.
func DecodeCashflows(r io.Reader, currency string) (CashflowMap[float64], string, error) {
	set, err := newCashflowSet(currency)
	if err != nil {
		return nil, "", err
	}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		var c cashflowCmd
		if err := json.Unmarshal(lineBytes, &c); err != nil {
			return nil, "", fmt.Errorf("line %d: could not decode cash flow %q: %w", line, string(lineBytes), err)
		}
		if err := set.add(c); err != nil {
			return nil, "", fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, "", fmt.Errorf("error reading cash flows: %w", err)
	}
	return set.cashflows(), set.cur, nil
}

// ExtractCashflows selects cash flows in an arbitrary decoded JSON document
// using a jsonpath expression, like "$.transactions[?(@.type=='transfer')]".
// Each selected object must have the same fields as a DecodeCashflows line.
func ExtractCashflows(doc any, path string, currency string) (CashflowMap[float64], string, error) {
	set, err := newCashflowSet(currency)
	if err != nil {
		return nil, "", err
	}
	jval, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, "", fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// jsonpath returns either a list of matches or a single match.
	var objects []any
	switch v := jval.(type) {
	case []any:
		objects = v
	case map[string]any:
		objects = []any{v}
	default:
		return nil, "", fmt.Errorf("%q selects %T, want objects", path, jval)
	}

	for i, obj := range objects {
		raw, err := json.Marshal(obj)
		if err != nil {
			return nil, "", fmt.Errorf("match %d of %q: %w", i, path, err)
		}
		var c cashflowCmd
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, "", fmt.Errorf("match %d of %q: could not decode cash flow %s: %w", i, path, raw, err)
		}
		if err := set.add(c); err != nil {
			return nil, "", fmt.Errorf("match %d of %q: %w", i, path, err)
		}
	}
	return set.cashflows(), set.cur, nil
}

// EncodeCashflows writes cash flows in the JSONL format read by
// DecodeCashflows, sorted by date.
func EncodeCashflows(w io.Writer, flows CashflowMap[float64], currency string) error {
	dates := make([]time.Time, 0, len(flows))
	for on := range flows {
		dates = append(dates, on)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	enc := json.NewEncoder(w)
	for _, on := range dates {
		d := jsonInstant(on.UTC())
		c := cashflowCmd{Date: &d, Amount: decimal.NewFromFloat(flows[on]), Currency: currency}
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("error encoding cash flow on %s: %w", on.Format(DatetimeFormat), err)
		}
	}
	return nil
}
