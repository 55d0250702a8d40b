package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"infostore/internal/codec"
	"infostore/internal/repository"
)

type cmdExport struct {
	Roots  []string `long:"root" description:"Root record to export; may be repeated (default: every root)"`
	Format string   `long:"format" short:"o" choice:"yaml" choice:"json" default:"yaml" description:"Document format"`
	Output string   `long:"output" default:"-" description:"Output path. Use '-' for stdout"`
}

func (cmd *cmdExport) Execute([]string) error {
	var roots []uuid.UUID
	for _, raw := range cmd.Roots {
		id, err := parseID("root", raw)
		if err != nil {
			return err
		}
		roots = append(roots, id)
	}

	ctx := context.Background()
	provider, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer provider.Release()

	if len(roots) == 0 {
		if roots, err = repository.Collect(provider.Roots(ctx)); err != nil {
			return err
		}
	}

	w := out
	if cmd.Output != "-" {
		f, err := os.Create(cmd.Output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	return codec.ForFormat(cmd.Format, codec.Options{}).Export(ctx, provider, roots, w)
}

type cmdImport struct {
	Parent   string `long:"parent" description:"Record to import below (default: import as roots)"`
	Format   string `long:"format" choice:"yaml" choice:"json" default:"yaml" description:"Document format"`
	FreshIDs bool   `long:"fresh-ids" description:"Assign new ids instead of keeping document ids"`
	Args     struct {
		Path string `positional-arg-name:"path" description:"Input path. Use '-' or omit for stdin"`
	} `positional-args:"yes"`
}

func (cmd *cmdImport) Execute([]string) error {
	parent, err := parseID("parent", cmd.Parent)
	if err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if path := cmd.Args.Path; path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	ctx := context.Background()
	provider, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer provider.Release()

	c := codec.ForFormat(cmd.Format, codec.Options{FreshIDs: cmd.FreshIDs})
	result, err := c.Import(ctx, provider, parent, r)
	if result != nil {
		log.WithFields(log.Fields{
			"created":     result.Created,
			"clone_links": result.CloneLinks,
		}).Info("imported records")
		fmt.Fprintf(out, "imported %s %s, %s clone %s\n",
			humanize.Comma(int64(result.Created)), plural(int64(result.Created), "record", "records"),
			humanize.Comma(int64(result.CloneLinks)), plural(int64(result.CloneLinks), "link", "links"))
	}
	return err
}
