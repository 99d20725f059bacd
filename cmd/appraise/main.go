package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maxappraiser/appraiser-api/internal/form"
	"github.com/maxappraiser/appraiser-api/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080", "base URL of the appraiser API")
	currency := flag.String("currency", "USD", "currency code for the valuation")
	locale := flag.String("locale", "en", "locale used to format the valuation amount")
	timeout := flag.Duration("timeout", 60*time.Second, "request timeout")
	width := flag.Int("width", form.DefaultBarWidth, "score bar width in columns")
	verbose := flag.Bool("verbose", false, "log request details to stderr")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	if err := logger.Initialize(logger.Config{
		Level:       level,
		Environment: "development",
		ServiceName: "appraise-cli",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	tag, err := language.Parse(*locale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid locale %q: %v\n", *locale, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := form.NewController(
		form.NewHTTPEvaluator(*endpoint, *timeout),
		form.WithCurrency(*currency),
		form.WithLocale(tag),
	)

	if err := run(ctx, controller, os.Stdin, os.Stdout, *width); err != nil {
		var alert *form.AlertError
		if errors.As(err, &alert) {
			logger.Debug("Evaluation failed", zap.Int("status", alert.Status), zap.Error(alert.Err))
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run asks every question in turn, re-asking the roadmap until submit is enabled
func run(ctx context.Context, c *form.Controller, in io.Reader, out io.Writer, width int) error {
	scanner := bufio.NewScanner(in)

	for _, q := range c.Questions() {
		for {
			fmt.Fprintf(out, "%s:\n> ", q.Prompt)
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("read answer: %w", err)
				}
				return fmt.Errorf("input ended before %s was answered", q.Field)
			}
			if err := c.Input(q.Field, scanner.Text()); err != nil {
				return err
			}
			if q.Field != form.FieldRoadmap || c.SubmitEnabled() {
				break
			}
			fmt.Fprintln(out, "The roadmap is required.")
		}
	}

	fmt.Fprintln(out, "\nEvaluating...")
	logger.Debug("Submitting idea", zap.String("currency", c.Currency()))

	res, err := c.Submit(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	return res.Fprint(out, width)
}
