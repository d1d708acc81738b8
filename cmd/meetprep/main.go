package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rahul/meetprep/internal/gateway"
	"github.com/rahul/meetprep/internal/meeting"
	"github.com/rahul/meetprep/internal/observability"
	"github.com/rahul/meetprep/internal/plan"
	"github.com/rahul/meetprep/internal/prep"
	"github.com/rahul/meetprep/internal/relevance"
	"github.com/rahul/meetprep/internal/store"
	"github.com/rahul/meetprep/pkg/config"
)

const usage = `Usage: meetprep [-config path] <command> [flags]

Commands:
  prepare    run one preparation and print the brief
  serve      start the web form
  telegram   start the Telegram bot
  runs       list recently journaled runs`

func main() {
	global := flag.NewFlagSet("meetprep", flag.ExitOnError)
	configPath := global.String("config", "config.yaml", "path to a YAML or JSON config file")
	global.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	_ = global.Parse(os.Args[1:])

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}

	log.SetOutput(observability.NewTermWriter())

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "prepare":
		err = runPrepare(ctx, cfg, args[1:])
	case "serve":
		observability.PrintBanner()
		err = runServe(ctx, cfg, args[1:])
	case "telegram":
		observability.PrintBanner()
		err = runTelegram(ctx, cfg)
	case "runs":
		err = runRuns(cfg, args[1:])
	default:
		global.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runPrepare(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("prepare", flag.ExitOnError)
	company := fs.String("company", "", "company name (required)")
	objective := fs.String("objective", "", "meeting objective")
	attendees := fs.String("attendees", "", `attendees, one per line or separated by ";" ("Name - Role")`)
	duration := fs.Int("duration", meeting.DefaultDuration, "meeting duration in minutes (15-180, step 15)")
	focus := fs.String("focus", "", "focus areas")
	llmKey := fs.String("llm-key", "", "LLM API key (defaults to the configured key)")
	searchKey := fs.String("search-key", "", "search API key (defaults to the configured key)")
	planOnly := fs.Bool("plan-only", false, "print the assembled plan without calling any service")
	_ = fs.Parse(args)

	req := meeting.NewRequest(*company, *objective,
		meeting.ParseAttendees(strings.ReplaceAll(*attendees, ";", "\n")), *duration, *focus)
	if err := meeting.Validate(req); err != nil {
		return err
	}

	verdict := relevance.ClassifyRequest(req)
	if *planOnly {
		printPlan(plan.Build(verdict, req))
		return nil
	}

	journal, closeJournal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer closeJournal()

	logger := observability.NewLogger(cfg.App.LLMLogPath)
	svc, err := prep.NewService(cfg, logger, journal)
	if err != nil {
		return err
	}

	creds := prep.Credentials{LLMAPIKey: *llmKey, SearchAPIKey: *searchKey}.Or(prep.ConfiguredCredentials(cfg))
	if err := svc.CheckCredentials(creds); err != nil {
		fmt.Fprintln(os.Stderr, prep.MissingCredentialsWarning)
		return err
	}

	out, err := svc.Prepare(ctx, creds, req)
	if err != nil {
		return err
	}
	fmt.Println(out.Result.Output)
	return nil
}

func printPlan(p plan.Plan) {
	fmt.Printf("Sector relevant: %v\n\n", p.Verdict)
	for i, s := range p.Stages {
		fmt.Printf("## %d. %s (%s)\n", i+1, s.ID, s.Profile.Role)
		fmt.Printf("Expected output: %s\n\n%s\n\n", s.ExpectedOutput, s.Prompt)
	}
}

func runServe(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.Gateways.Web.Addr, "listen address")
	_ = fs.Parse(args)

	journal, closeJournal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer closeJournal()

	svc, err := prep.NewService(cfg, observability.NewLogger(cfg.App.LLMLogPath), journal)
	if err != nil {
		return err
	}

	web := gateway.NewWebGateway(svc, prep.ConfiguredCredentials(cfg))
	errc := make(chan error, 1)
	go func() {
		errc <- web.ListenAndServe(*addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := web.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Println("Server exited")
	return nil
}

func runTelegram(ctx context.Context, cfg *config.Config) error {
	tgCfg, ok := cfg.GetTelegramConfig()
	if !ok {
		return fmt.Errorf("telegram gateway is not enabled or token is missing")
	}

	journal, closeJournal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer closeJournal()

	svc, err := prep.NewService(cfg, observability.NewLogger(cfg.App.LLMLogPath), journal)
	if err != nil {
		return err
	}

	tg, err := gateway.NewTelegramGateway(tgCfg.Token, svc, prep.ConfiguredCredentials(cfg))
	if err != nil {
		return err
	}
	defer tg.Stop()

	return tg.Start(ctx)
}

func runRuns(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	limit := fs.Int("limit", 20, "number of runs to list")
	_ = fs.Parse(args)

	if cfg.Journal.Path == "" {
		return fmt.Errorf("journal is disabled; set journal.path in the config")
	}
	journal, err := store.NewJournal(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer journal.Close()

	runs, err := journal.Recent(*limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tRUN\tCOMPANY\tRELEVANT\tSTAGES")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%d\n", r.CreatedAt.Format(time.RFC3339), r.RunID, r.Company, r.Verdict, r.StageCount)
	}
	return w.Flush()
}

// openJournal returns a nil journal when no path is configured.
func openJournal(cfg *config.Config) (prep.Journal, func(), error) {
	if cfg.Journal.Path == "" {
		return nil, func() {}, nil
	}
	j, err := store.NewJournal(cfg.Journal.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return j, func() { j.Close() }, nil
}
