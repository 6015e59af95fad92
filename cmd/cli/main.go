package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amirasaad/remitquote/infra/initializer"
	"github.com/amirasaad/remitquote/pkg/app"
	"github.com/amirasaad/remitquote/pkg/config"
	"github.com/amirasaad/remitquote/pkg/currency"
	"github.com/amirasaad/remitquote/pkg/domain"
	"github.com/amirasaad/remitquote/pkg/domain/quote"
	"github.com/amirasaad/remitquote/pkg/money"
	quotesvc "github.com/amirasaad/remitquote/pkg/service/quote"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// quoteTimeout bounds a single command, including any live refresh.
const quoteTimeout = 10 * time.Second

const usage = `Usage: cli <command> [arguments]
Commands:
  quote <SEND> <RECEIVE> <amount> [send|receive]
  currencies`

var errUsage = errors.New("invalid usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage) //nolint:errcheck
		return 2
	}

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(stderr, "Failed to load configuration:", err) //nolint:errcheck
		return 1
	}
	deps, cleanup, err := initializer.InitializeDependencies(cfg, initializer.WithLogOutput(stderr))
	if err != nil {
		fmt.Fprintln(stderr, "Failed to initialize:", err) //nolint:errcheck
		return 1
	}
	defer cleanup()

	a := app.New(deps, cfg)
	c := &cli{
		svc:       a.QuoteService,
		registry:  deps.CurrencyRegistry,
		maxAmount: cfg.Quote.MaxAmount,
		out:       stdout,
		pretty:    isTerminal(stdout),
	}
	ctx, cancel := context.WithTimeout(context.Background(), quoteTimeout)
	defer cancel()
	if err := c.dispatch(ctx, args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(stderr, usage) //nolint:errcheck
			return 2
		}
		fmt.Fprintln(stderr, "Error:", err) //nolint:errcheck
		return 1
	}
	return 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type cli struct {
	svc       *quotesvc.Service
	registry  *currency.Registry
	maxAmount float64
	out       io.Writer
	pretty    bool
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	switch args[0] {
	case "quote":
		return c.quote(ctx, args[1:])
	case "currencies":
		return c.currencies()
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func (c *cli) quote(ctx context.Context, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return errUsage
	}
	req := quote.Request{
		SendCurrency:    strings.ToUpper(args[0]),
		ReceiveCurrency: strings.ToUpper(args[1]),
		Direction:       quote.DirectionSend,
		Method:          quote.MethodBankTransfer,
	}
	amount, err := strconv.ParseFloat(args[2], 64)
	if err != nil || !money.IsFinitePositive(amount) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAmount, args[2])
	}
	if amount > c.maxAmount {
		return fmt.Errorf("%w (%s)", domain.ErrAmountExceedsMax, money.Format(c.maxAmount, "", 0))
	}
	req.Amount = amount
	if len(args) == 4 {
		req.Direction = quote.Direction(args[3])
	}
	for _, code := range []string{req.SendCurrency, req.ReceiveCurrency} {
		if !c.registry.IsSupported(code) {
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, code)
		}
	}

	q, err := c.svc.Compute(ctx, req)
	if err != nil {
		return err
	}
	if !c.pretty {
		return c.writeJSON(q)
	}
	c.printQuote(q)
	return nil
}

func (c *cli) currencies() error {
	list := c.registry.List()
	if !c.pretty {
		return c.writeJSON(list)
	}
	code := color.New(color.FgCyan, color.Bold)
	for _, cur := range list {
		code.Fprintf(c.out, "%-4s", cur.Code) //nolint:errcheck
		fmt.Fprintf(c.out, " %s %-18s %s (%d decimals)\n", //nolint:errcheck
			cur.Flag, cur.Name, cur.Symbol, cur.Decimals)
	}
	return nil
}

func (c *cli) writeJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printQuote(q *quote.Quote) {
	label := color.New(color.Faint)
	amount := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgYellow)

	row := func(name, value string) {
		label.Fprintf(c.out, "%-16s", name) //nolint:errcheck
		fmt.Fprintln(c.out, value)          //nolint:errcheck
	}

	highlight := func(name string, v float64, code string) {
		label.Fprintf(c.out, "%-16s", name)                        //nolint:errcheck
		amount.Fprintf(c.out, "%s %s\n", c.format(v, code), code) //nolint:errcheck
	}

	highlight("You send", q.SendAmount, q.SendCurrency)
	row(q.FeeLabel, c.format(q.Fee, q.FeeCurrency)+" "+q.FeeCurrency)
	if !q.IsLocalTransfer {
		row("We convert", c.format(q.AmountToConvert, q.SendCurrency)+" "+q.SendCurrency)
		row("Rate", fmt.Sprintf("1 %s = %s %s (mid-market %s)",
			q.SendCurrency,
			strconv.FormatFloat(q.ExchangeRate, 'f', -1, 64),
			q.ReceiveCurrency,
			strconv.FormatFloat(q.MidMarketRate, 'f', -1, 64),
		))
	}
	highlight("Recipient gets", q.ReceiveAmount, q.ReceiveCurrency)
	row("Arrives", fmt.Sprintf("%s (%s)", q.ETALabel, q.ETA))

	if q.RateStale {
		warn.Fprintln(c.out, q.RateDisclaimer) //nolint:errcheck
	}
	if q.VolumeHint != nil {
		warn.Fprintln(c.out, q.VolumeHint.Message) //nolint:errcheck
	}
	for _, d := range q.Disclaimers {
		label.Fprintln(c.out, "* "+d) //nolint:errcheck
	}
}

func (c *cli) format(v float64, code string) string {
	return money.Format(v, "", c.registry.Decimals(code))
}
