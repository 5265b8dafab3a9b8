package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/longlodw/tabular"
	"github.com/longlodw/tabular/internal/config"
	"golang.org/x/sync/errgroup"
)

var errUsage = errors.New("usage: tabular convert|join|group|save|load|ls [flags] args")

type command func(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error

var commands = map[string]command{
	"convert": convertCmd,
	"join":    joinCmd,
	"group":   groupCmd,
	"save":    saveCmd,
	"load":    loadCmd,
	"ls":      lsCmd,
}

func run(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
	return cmd(ctx, cfg, args[1:], stdout)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func directives(cfg *config.Config) (*tabular.Csv, error) {
	return cfg.Csv.Directives()
}

// parseInput reads path, or standard input for "-", into a streamed table.
func parseInput(c *tabular.Csv, path string) (*tabular.StreamedTable, error) {
	if path == "-" {
		return c.Parse(io.NopCloser(os.Stdin))
	}
	return c.ParseFile(path)
}

// writeOutput serialises t to path, or to stdout for "-" and "".
func writeOutput(c *tabular.Csv, t tabular.Table, path string, stdout io.Writer) error {
	if path == "" || path == "-" {
		return c.Serialize(t, stdout)
	}
	return c.SerializeFile(t, path)
}

func convertCmd(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("convert")
	fromDelim := fs.String("from-delimiter", cfg.Csv.Delimiter, "delimiter of the input")
	toDelim := fs.String("to-delimiter", cfg.Csv.Delimiter, "delimiter of the output")
	fromEnc := fs.String("from-encoding", cfg.Csv.Encoding, "encoding of the input")
	toEnc := fs.String("to-encoding", cfg.Csv.Encoding, "encoding of the output")
	columns := fs.String("columns", "", "comma separated columns to keep")
	rows := fs.Int("rows", cfg.Csv.MaxRows, "maximum number of rows to read")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("convert <in> <out>: %w", errUsage)
	}

	in, err := dialect(cfg, *fromDelim, *fromEnc)
	if err != nil {
		return err
	}
	in.WithMaxRows(*rows).WithColumns(splitList(*columns)...)
	out, err := dialect(cfg, *toDelim, *toEnc)
	if err != nil {
		return err
	}

	table, err := parseInput(in, fs.Arg(0))
	if err != nil {
		return err
	}
	defer table.Close()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeOutput(out, table, fs.Arg(1), stdout); err != nil {
		return err
	}
	slog.Info("converted", "from", fs.Arg(0), "to", fs.Arg(1), "columns", len(out.Columns))
	return nil
}

func dialect(cfg *config.Config, delimiter, encoding string) (*tabular.Csv, error) {
	csvCfg := cfg.Csv
	csvCfg.Delimiter = delimiter
	csvCfg.Encoding = encoding
	return csvCfg.Directives()
}

// parseMatches reads "src[:tgt],..." into column matches.
func parseMatches(value string) ([]tabular.ColumnMatch, error) {
	var matches []tabular.ColumnMatch
	for _, part := range splitList(value) {
		source, target, found := strings.Cut(part, ":")
		switch {
		case source == "":
			return nil, fmt.Errorf("empty source column in %q", part)
		case !found:
			matches = append(matches, tabular.Match(source))
		case target == "":
			return nil, fmt.Errorf("empty target column in %q", part)
		default:
			matches = append(matches, tabular.MatchPair(source, target))
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("-on is required: %w", errUsage)
	}
	return matches, nil
}

func joinCmd(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("join")
	on := fs.String("on", "", "columns to join on, as src[:tgt],...")
	outPath := fs.String("out", "-", "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("join -on cols <source> <target>: %w", errUsage)
	}
	matches, err := parseMatches(*on)
	if err != nil {
		return err
	}

	var source, target *tabular.MaterializedTable
	g, ctx := errgroup.WithContext(ctx)
	load := func(path string, dst **tabular.MaterializedTable) func() error {
		return func() error {
			c, err := directives(cfg)
			if err != nil {
				return err
			}
			streamed, err := parseInput(c, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			defer streamed.Close()
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := streamed.Materialize()
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			*dst = m
			return nil
		}
	}
	g.Go(load(fs.Arg(0), &source))
	g.Go(load(fs.Arg(1), &target))
	if err := g.Wait(); err != nil {
		return err
	}

	if err := tabular.Join(source).With(target).BasedOn(matches...); err != nil {
		return err
	}
	c, err := directives(cfg)
	if err != nil {
		return err
	}
	return writeOutput(c, source, *outPath, stdout)
}

func groupCmd(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("group")
	by := fs.String("by", "", "comma separated columns to group by")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cols := splitList(*by)
	if fs.NArg() != 1 || len(cols) == 0 {
		return fmt.Errorf("group -by cols <in>: %w", errUsage)
	}
	c, err := directives(cfg)
	if err != nil {
		return err
	}
	table, err := parseInput(c, fs.Arg(0))
	if err != nil {
		return err
	}
	defer table.Close()

	groups, err := tabular.Group(table).By(cols...)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if _, err := fmt.Fprintf(stdout, "%s\t%d\n", key, len(groups[key])); err != nil {
			return err
		}
	}
	return ctx.Err()
}
