package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/metcalfc/hark/internal/app"
	"github.com/metcalfc/hark/internal/config"
	"github.com/metcalfc/hark/internal/logging"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	open    string
	name    string
	list    bool
	voices  bool
	version bool
	file    string
}

func parseFlags(prog string, args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.open, "open", "", "Open the document with this id")
	fs.StringVar(&opts.name, "name", "", "Add text from stdin as a document with this name")
	fs.BoolVar(&opts.list, "list", false, "List documents and exit")
	fs.BoolVar(&opts.voices, "voices", false, "List voices of the speech engine and exit")
	fs.BoolVar(&opts.version, "v", false, "Show version information")
	fs.BoolVar(&opts.version, "version", false, "Show version information")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "%s - read documents aloud\n\n", prog)
		fmt.Fprintf(stderr, "Usage:\n")
		fmt.Fprintf(stderr, "  %s [options] [file]\n\n", prog)
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  %s                        Open the library\n", prog)
		fmt.Fprintf(stderr, "  %s book.epub              Import a file, or reopen it\n", prog)
		fmt.Fprintf(stderr, "  pbpaste | %s -name Notes  Add pasted text\n", prog)
		fmt.Fprintf(stderr, "  %s -list                  Show the library\n", prog)
		fmt.Fprintf(stderr, "\nEnvironment:\n")
		fmt.Fprintf(stderr, "  HARK_STORAGE_BACKEND     file, sqlite or memory\n")
		fmt.Fprintf(stderr, "  HARK_SPEECH_ENGINE       auto, say, espeak or silent\n")
		fmt.Fprintf(stderr, "  HARK_LOG_LEVEL           debug, info, warn or error\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return opts, fmt.Errorf("expected at most one file, got %d", fs.NArg())
	}
	opts.file = fs.Arg(0)
	if opts.file != "" && opts.name != "" {
		return opts, fmt.Errorf("-name reads stdin and cannot be combined with a file")
	}
	return opts, nil
}

// bootstrap loads configuration, opens the log and starts the app. The
// returned cleanup closes both.
func bootstrap(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logFile, err := logging.OpenFile(cfg.Logger.File)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Logger.Level, cfg.Logger.Format, logFile)

	a, err := app.FromConfig(cfg, logger)
	if err != nil {
		logFile.Close()
		return nil, nil, err
	}
	a.Start(ctx)

	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close app", "error", err)
		}
		logFile.Close()
	}
	return a, cleanup, nil
}

// runCommand handles everything that happens before the interface starts.
// It returns the document to open, and done when the command was answered
// without needing the interface.
func runCommand(ctx context.Context, a *app.App, opts options, stdin io.Reader, stdout io.Writer) (string, bool, error) {
	switch {
	case opts.list:
		listDocuments(a, stdout)
		return "", true, nil

	case opts.voices:
		voices, err := a.Voices(ctx)
		if err != nil {
			return "", true, err
		}
		fmt.Fprintf(stdout, "Engine: %s\n", a.Engine().Name())
		for _, v := range voices {
			fmt.Fprintf(stdout, "  %-24s %-8s %s\n", v.ID, v.Language, v.Name)
		}
		return "", true, nil

	case opts.name != "":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", true, fmt.Errorf("reading stdin: %w", err)
		}
		doc, err := a.PasteText(opts.name, string(data))
		if err != nil {
			return "", true, err
		}
		return doc.ID, false, nil

	case opts.file != "":
		doc, err := a.OpenFile(opts.file)
		if err != nil {
			return "", true, fmt.Errorf("failed to read file '%s': %w", opts.file, err)
		}
		return doc.ID, false, nil
	}

	return opts.open, false, nil
}

func listDocuments(a *app.App, w io.Writer) {
	docs := a.Documents.List()
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents.")
		return
	}
	for _, d := range docs {
		words := 0
		for _, p := range d.Content {
			words += len(strings.Fields(p))
		}
		fmt.Fprintf(w, "%s  %-32s %d/%d  %s words  %d bookmarks  %s\n",
			d.ID, d.Name, d.CurrentParagraph+1, d.Len(),
			humanize.Comma(int64(words)), len(d.Bookmarks), humanize.Time(d.CreatedAt()))
	}
}

// run is shared by the terminal and desktop entry points. ui is started
// with the document to open, if any.
func run(prog string, ui func(*app.App, string) error) int {
	opts, err := parseFlags(prog, os.Args[1:], os.Stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if opts.version {
		fmt.Printf("%s %s (commit: %s, built: %s)\n", prog, version, commit, date)
		return 0
	}

	ctx := context.Background()
	a, cleanup, err := bootstrap(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	startID, done, err := runCommand(ctx, a, opts, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if done {
		return 0
	}

	if err := ui(a, startID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
