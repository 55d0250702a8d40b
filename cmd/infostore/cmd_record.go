package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"infostore/internal/access"
	"infostore/internal/domain"
	"infostore/internal/information"
)

type cmdInit struct{}

func (cmd *cmdInit) Execute([]string) error {
	baseCfg.Store.AutoCreate = "true"

	ctx := context.Background()
	provider, cfg, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer provider.Release()

	if err := provider.CreateStructure(ctx); err != nil {
		return err
	}
	fmt.Fprint(out, cfg.Summary(), "\n")
	return nil
}

type cmdGet struct {
	Format string `long:"format" short:"o" choice:"table" choice:"yaml" choice:"json" default:"table" description:"Output format"`
	Args   idArg  `positional-args:"yes"`
}

func (cmd *cmdGet) Execute([]string) error {
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

	point := access.NewPoint(provider)
	rec, err := information.Load(ctx, point, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("record %s not found", id)
	}
	content, contentType, err := rec.EffectiveContent(ctx)
	if err != nil {
		return err
	}

	switch cmd.Format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(recordView(rec, content, contentType))
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(recordView(rec, content, contentType))
	}

	table := tablewriter.NewWriter(out)
	table.Header("Field", "Value")
	if err := table.Bulk(recordRows(rec, content, contentType)); err != nil {
		return err
	}
	return table.Render()
}

// view is the printable form of a record
type view struct {
	ID                   string `yaml:"id" json:"id"`
	Description          string `yaml:"description" json:"description"`
	Content              string `yaml:"content" json:"content"`
	ContentType          string `yaml:"content_type" json:"content_type"`
	Parent               string `yaml:"parent,omitempty" json:"parent,omitempty"`
	Relation             string `yaml:"relation,omitempty" json:"relation,omitempty"`
	Order                int64  `yaml:"order" json:"order"`
	ContentFrom          string `yaml:"content_from,omitempty" json:"content_from,omitempty"`
	EffectiveContent     string `yaml:"effective_content,omitempty" json:"effective_content,omitempty"`
	EffectiveContentType string `yaml:"effective_content_type,omitempty" json:"effective_content_type,omitempty"`
}

func recordView(rec *information.Record, content string, contentType domain.ContentType) view {
	v := view{
		ID:          rec.ID.String(),
		Description: rec.Description,
		Content:     rec.Content,
		ContentType: rec.ContentType.String(),
		Relation:    rec.ParentRelation,
		Order:       rec.SiblingOrder,
	}
	if !rec.IsRoot() {
		v.Parent = rec.ParentID.String()
	}
	if rec.IsClone() {
		v.ContentFrom = rec.ContentFromID.String()
		v.EffectiveContent = content
		v.EffectiveContentType = contentType.String()
	}
	return v
}

func recordRows(rec *information.Record, content string, contentType domain.ContentType) [][]string {
	v := recordView(rec, content, contentType)
	rows := [][]string{
		{"Id", v.ID},
		{"Description", v.Description},
		{"Content", v.Content},
		{"ContentType", v.ContentType},
		{"Parent", orNone(v.Parent)},
		{"Relation", v.Relation},
		{"Order", strconv.FormatInt(v.Order, 10)},
		{"ContentFrom", orNone(v.ContentFrom)},
	}
	if rec.IsClone() {
		rows = append(rows,
			[]string{"EffectiveContent", v.EffectiveContent},
			[]string{"EffectiveContentType", v.EffectiveContentType})
	}
	return rows
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}

// FieldFlags are the editable fields of a record. Nil fields are unset.
type FieldFlags struct {
	Description *string `long:"description" short:"d" description:"Description"`
	Content     *string `long:"content" short:"c" description:"Content"`
	ContentType *string `long:"type" short:"t" description:"Content type (Text or Numeric)"`
	Parent      *string `long:"parent" short:"p" description:"Parent record id; empty for a root"`
	Relation    *string `long:"relation" short:"r" description:"Relation to the parent"`
	Order       *int64  `long:"order" description:"Order among siblings"`
	CloneFrom   *string `long:"clone-from" description:"Record to take content from; empty to stop cloning"`
}

// apply writes every set field to info
func (f *FieldFlags) apply(info *domain.Information) error {
	if f.Description != nil {
		info.Description = *f.Description
	}
	if f.Content != nil {
		info.Content = *f.Content
	}
	if f.ContentType != nil {
		info.ContentType = domain.ParseContentType(*f.ContentType)
	}
	if f.Parent != nil {
		id, err := parseID("parent", *f.Parent)
		if err != nil {
			return err
		}
		info.ParentID = id
	}
	if f.Relation != nil {
		info.ParentRelation = *f.Relation
	}
	if f.Order != nil {
		info.SiblingOrder = *f.Order
	}
	if f.CloneFrom != nil {
		id, err := parseID("clone-from", *f.CloneFrom)
		if err != nil {
			return err
		}
		info.ContentFromID = id
	}
	return nil
}

type cmdCreate struct {
	FieldFlags
	ID string `long:"id" description:"Record id (default: generated)"`
}

func (cmd *cmdCreate) Execute([]string) error {
	info := domain.NewInformation("", "")
	if err := cmd.apply(info); err != nil {
		return err
	}
	id, err := parseID("id", cmd.ID)
	if err != nil {
		return err
	}
	info.ID = id

	ctx := context.Background()
	provider, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer provider.Release()

	if _, err := provider.Create(ctx, info); err != nil {
		return err
	}
	fmt.Fprintln(out, info.ID)
	return nil
}

type cmdUpdate struct {
	FieldFlags
	Args idArg `positional-args:"yes"`
}

func (cmd *cmdUpdate) Execute([]string) error {
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

	rec, err := information.Load(ctx, access.NewPoint(provider), id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("record %s not found", id)
	}
	if err := cmd.apply(&rec.Information); err != nil {
		return err
	}
	return rec.Save(ctx)
}

type cmdDelete struct {
	Cascade bool  `long:"cascade" description:"Also delete all transitive children"`
	Args    idArg `positional-args:"yes"`
}

func (cmd *cmdDelete) Execute([]string) error {
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

	var n int64
	if cmd.Cascade {
		n, err = provider.DeleteAll(ctx, id)
	} else {
		var deleted bool
		if deleted, err = provider.Delete(ctx, id); deleted {
			n = 1
		}
	}
	if n > 0 {
		fmt.Fprintf(out, "deleted %s %s\n", humanize.Comma(n), plural(n, "record", "records"))
	}
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintf(os.Stderr, "record %s not found\n", id)
	}
	return nil
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
