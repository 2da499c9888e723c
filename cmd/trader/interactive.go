package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ducminhle1904/timed-spot-trader/cmd/common"
	"github.com/ducminhle1904/timed-spot-trader/internal/config"
	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
	"github.com/ducminhle1904/timed-spot-trader/pkg/reporting"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

// errEndOfInput means stdin was closed
var errEndOfInput = errors.New("end of input")

// prompter reads answers line by line. Reading happens on its own goroutine so a
// prompt can be abandoned when ctx is cancelled.
type prompter struct {
	out   io.Writer
	lines chan string
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{out: out, lines: make(chan string)}
	go func() {
		defer close(p.lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			p.lines <- scanner.Text()
		}
	}()
	return p
}

// ask prints question and returns the trimmed answer
func (p *prompter) ask(ctx context.Context, question string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", question)
	select {
	case line, ok := <-p.lines:
		if !ok {
			fmt.Fprintln(p.out)
			return "", errEndOfInput
		}
		return strings.TrimSpace(line), nil
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", errInterrupted
	}
}

// confirm asks a yes/no question; an empty answer picks def
func (p *prompter) confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		answer, err := p.ask(ctx, fmt.Sprintf("%s [%s]", question, hint))
		if err != nil {
			return false, err
		}
		if yes, ok := parseYesNo(answer, def); ok {
			return yes, nil
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

// parseYesNo accepts y/yes/n/no in any case; empty means def
func parseYesNo(answer string, def bool) (yes, ok bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return def, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}

// parseNetwork maps the network menu answer to testnet; empty keeps def
func parseNetwork(answer string, def bool) (testnet, ok bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return def, true
	case "1", "mainnet", "main":
		return false, true
	case "2", "testnet", "test":
		return true, true
	}
	return false, false
}

// orderDraft is one pass through the order prompts
type orderDraft struct {
	request types.OrderRequest
	target  time.Time
}

// runInteractive asks for the network, then loops over order prompts until the user stops
func runInteractive(ctx context.Context, cfg *config.Config, con *console, in io.Reader) error {
	log := con.log
	p := newPrompter(in, con.out)
	log.Header(common.ProjectName)

	testnet, err := askNetwork(ctx, p, cfg.Testnet)
	if err != nil {
		return endSession(err)
	}
	cfg.Testnet = testnet

	s, err := newSession(ctx, cfg, con, "interactive")
	if err != nil {
		log.Error("%s", describe(err))
		return err
	}
	defer s.close()

	for {
		err := s.interactiveRound(ctx, p)
		var tradeErr *traderrors.TradeError
		switch {
		case err == nil:
		case errors.Is(err, errInterrupted), errors.Is(err, errEndOfInput):
			return endSession(err)
		case errors.As(err, &tradeErr) && tradeErr.IsFatal():
			return err
		}
		// any other error was already reported; back to the prompt

		again, err := p.confirm(ctx, "Place another order?", false)
		if err != nil {
			return endSession(err)
		}
		if !again {
			log.Info("Goodbye")
			return nil
		}
	}
}

func askNetwork(ctx context.Context, p *prompter, def bool) (bool, error) {
	defLabel := "1"
	if def {
		defLabel = "2"
	}
	for {
		fmt.Fprintln(p.out, "Network:  1) Mainnet  2) Testnet")
		answer, err := p.ask(ctx, fmt.Sprintf("Choose network [%s]", defLabel))
		if err != nil {
			return false, err
		}
		if testnet, ok := parseNetwork(answer, def); ok {
			return testnet, nil
		}
		fmt.Fprintln(p.out, "Please enter 1 or 2.")
	}
}

// endSession turns closed stdin into a clean exit
func endSession(err error) error {
	if errors.Is(err, errEndOfInput) {
		return nil
	}
	return err
}

// interactiveRound runs balance, order entry, confirmation and execution once
func (s *session) interactiveRound(ctx context.Context, p *prompter) error {
	show, err := p.confirm(ctx, "Show balances?", false)
	if err != nil {
		return err
	}
	if show {
		if err := s.showBalance(ctx); err != nil {
			s.log.Error("Balance query failed: %s", describe(err))
		}
	}

	draft, err := s.askOrder(ctx, p)
	if err != nil {
		return err
	}

	reporting.RenderOrderSummary(s.out, s.venue().GetName(), s.venue().GetEnvironment(),
		draft.request, s.inZone(draft.target))
	ok, err := p.confirm(ctx, "Submit this order?", false)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Info("Order discarded")
		return nil
	}

	return s.execute(ctx, draft.request, draft.target)
}

// askOrder collects and validates one order; invalid answers are asked again
func (s *session) askOrder(ctx context.Context, p *prompter) (orderDraft, error) {
	var draft orderDraft

	symbol, err := askUntil(ctx, p, "Symbol (e.g. BTCUSDT)", func(a string) error {
		if a == "" {
			return errors.New("symbol is required")
		}
		return nil
	})
	if err != nil {
		return draft, err
	}

	side, err := askUntil(ctx, p, "Side (BUY/SELL)", func(a string) error {
		_, err := types.ParseOrderSide(a)
		return err
	})
	if err != nil {
		return draft, err
	}

	quantity, err := askUntil(ctx, p, "Quantity", func(a string) error {
		_, err := types.NewLimitOrder(symbol, side, a, "1")
		return err
	})
	if err != nil {
		return draft, err
	}

	price, err := askUntil(ctx, p, "Price", func(a string) error {
		_, err := types.NewLimitOrder(symbol, side, quantity, a)
		return err
	})
	if err != nil {
		return draft, err
	}

	if draft.request, err = types.NewLimitOrder(symbol, side, quantity, price); err != nil {
		return draft, err
	}

	later, err := p.confirm(ctx, "Schedule for a later time?", false)
	if err != nil || !later {
		return draft, err
	}

	question := fmt.Sprintf("Execution time HH:MM (%s)", s.location)
	_, err = askUntil(ctx, p, question, func(a string) error {
		target, err := s.resolver.Resolve(a)
		if err == nil {
			draft.target = target
		}
		return err
	})
	return draft, err
}

// askUntil repeats question until check accepts the answer
func askUntil(ctx context.Context, p *prompter, question string, check func(string) error) (string, error) {
	for {
		answer, err := p.ask(ctx, question)
		if err != nil {
			return "", err
		}
		if err := check(answer); err != nil {
			fmt.Fprintf(p.out, "  %s\n", traderrors.UserMessage(err))
			continue
		}
		return answer, nil
	}
}
