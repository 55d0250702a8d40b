package main

import (
	"context"
	"fmt"
	"iter"
	"strconv"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"infostore/internal/repository"
)

type cmdRoots struct{}

func (cmd *cmdRoots) Execute([]string) error {
	return listRecords(func(ctx context.Context, da repository.DataAccess) iter.Seq2[uuid.UUID, error] {
		return da.Roots(ctx)
	})
}

type cmdChildren struct {
	Args idArg `positional-args:"yes"`
}

func (cmd *cmdChildren) Execute([]string) error {
	id, err := cmd.Args.parse()
	if err != nil {
		return err
	}
	return listRecords(func(ctx context.Context, da repository.DataAccess) iter.Seq2[uuid.UUID, error] {
		return da.Children(ctx, id)
	})
}

type cmdClones struct {
	Args idArg `positional-args:"yes"`
}

func (cmd *cmdClones) Execute([]string) error {
	id, err := cmd.Args.parse()
	if err != nil {
		return err
	}
	return listRecords(func(ctx context.Context, da repository.DataAccess) iter.Seq2[uuid.UUID, error] {
		return da.ContentTo(ctx, id)
	})
}

// listRecords prints a table of the records yielded by list
func listRecords(list func(context.Context, repository.DataAccess) iter.Seq2[uuid.UUID, error]) error {
	ctx := context.Background()
	provider, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer provider.Release()

	// The listing must be drained before records are read on the same
	// connection.
	ids, err := repository.Collect(list(ctx, provider))
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header("Id", "Description", "Relation", "Order", "Clone")
	for _, id := range ids {
		info, err := provider.Get(ctx, id)
		if err != nil {
			return err
		}
		if info == nil {
			continue
		}
		clone := ""
		if info.IsClone() {
			clone = info.ContentFromID.String()
		}
		if err := table.Append([]string{
			id.String(),
			info.Description,
			info.ParentRelation,
			strconv.FormatInt(info.SiblingOrder, 10),
			clone,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

type cmdOrigin struct {
	Args idArg `positional-args:"yes"`
}

func (cmd *cmdOrigin) Execute([]string) error {
	id, err := cmd.Args.parse()
	if err != nil {
		return err
	}

	ctx := context.Background()
	provider, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer provider.Release()

	exists, err := provider.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("record %s not found", id)
	}

	origin, err := provider.ContentFrom(ctx, id)
	if err != nil {
		return err
	}
	if origin == uuid.Nil {
		fmt.Fprintln(out, "unresolved")
		return nil
	}
	fmt.Fprintln(out, origin)
	return nil
}
