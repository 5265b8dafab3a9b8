package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/longlodw/tabular"
	"github.com/longlodw/tabular/internal/config"
)

func openDB(cfg *config.Config, path string) (*tabular.DB, error) {
	maUn, err := cfg.Store.MarshalUnmarshaler()
	if err != nil {
		return nil, err
	}
	return tabular.OpenDBWithCodec(maUn, path, 0600, &tabular.DBOptions{Timeout: cfg.Store.OpenTimeout})
}

// saveCmd stores a CSV file as a table, along with the directives it was read with.
func saveCmd(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	if len(args) != 3 {
		return fmt.Errorf("save <db> <name> <in>: %w", errUsage)
	}
	dbPath, name, in := args[0], args[1], args[2]

	c, err := directives(cfg)
	if err != nil {
		return err
	}
	table, err := parseInput(c, in)
	if err != nil {
		return err
	}
	defer table.Close()

	db, err := openDB(cfg, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.Update(func(tx *tabular.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := tx.Put(name, table); err != nil {
			return err
		}
		return tx.PutCsv(name, c)
	})
	if err != nil {
		return err
	}
	slog.Info("saved table", "db", dbPath, "table", name, "columns", len(table.Columns()))
	return nil
}

// loadCmd writes a stored table as CSV, using the directives it was saved with when there are
// any.
func loadCmd(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	if len(args) != 3 {
		return fmt.Errorf("load <db> <name> <out>: %w", errUsage)
	}
	dbPath, name, out := args[0], args[1], args[2]

	db, err := openDB(cfg, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.View(func(tx *tabular.Tx) error {
		c, err := tx.LoadCsv(name)
		if errors.Is(err, tabular.ErrUnknownKey) {
			c, err = directives(cfg)
		}
		if err != nil {
			return err
		}
		// stored columns win over the saved ones
		c.Columns = nil

		table, err := tx.Stream(name)
		if err != nil {
			return err
		}
		defer table.Close()
		if err := ctx.Err(); err != nil {
			return err
		}
		return writeOutput(c, table, out, stdout)
	})
}

func lsCmd(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("ls")
	verbose := fs.Bool("v", false, "also print store statistics")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("ls [-v] <db>: %w", errUsage)
	}
	db, err := openDB(cfg, fs.Arg(0))
	if err != nil {
		return err
	}
	defer db.Close()

	return db.View(func(tx *tabular.Tx) error {
		names, err := tx.Names()
		if err != nil {
			return err
		}
		for _, name := range names {
			meta, err := tx.Info(name)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(stdout, "%s\t%d rows\t%d columns\t%s\n",
				name, meta.RowCount, len(meta.Columns), meta.Revision)
			if err != nil {
				return err
			}
		}
		if *verbose {
			if _, err := fmt.Fprintf(stdout, "\n%s", db.Stats()); err != nil {
				return err
			}
		}
		return ctx.Err()
	})
}
