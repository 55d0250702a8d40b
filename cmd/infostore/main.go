package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
)

// out receives command output
var out io.Writer = os.Stdout

func main() {
	parser := flags.NewParser(baseCfg, flags.Default)
	parser.Name = "infostore"
	parser.EnvNamespace = "INFOSTORE"
	parser.LongDescription = `infostore manages a store of hierarchical information records.

	Records form a tree through their parent link, and may take their content
	from another record through a clone link. Store settings are read from a
	YAML config file (see --config) and may be overridden by flags or by
	INFOSTORE_* environment variables.
	`

	mustAddCmd(parser.Command, "init", "Create the store and its schema", `
Open the configured store, creating it when missing, and ensure the
Information table and its indexes exist. Safe to run repeatedly.
`, &cmdInit{})
	mustAddCmd(parser.Command, "get", "Show one record", `
Show every field of a record. Clones also show the content resolved through
their clone chain.
`, &cmdGet{})
	mustAddCmd(parser.Command, "create", "Create a record", `
Create a record and print its id. A missing --id is generated.
`, &cmdCreate{})
	mustAddCmd(parser.Command, "update", "Update fields of a record", `
Update the given fields of a record, keeping fields that are not specified.
`, &cmdUpdate{})
	mustAddCmd(parser.Command, "delete", "Delete a record", `
Delete a single record. A record that still has children or clones is
refused by the store; use --cascade to delete it with all of its
transitive children.
`, &cmdDelete{})
	mustAddCmd(parser.Command, "roots", "List root records", "", &cmdRoots{})
	mustAddCmd(parser.Command, "children", "List the children of a record", "", &cmdChildren{})
	mustAddCmd(parser.Command, "clones", "List the direct clones of a record", "", &cmdClones{})
	mustAddCmd(parser.Command, "origin", "Resolve the clone chain of a record", `
Print the record that owns the content of the given record, following clone
links. Chains that loop or reach a missing record are unresolved.
`, &cmdOrigin{})
	mustAddCmd(parser.Command, "export", "Export subtrees as YAML or JSON", `
Write the subtrees of the given roots, or of every root record, as a nested
document suitable for "import".
`, &cmdExport{})
	mustAddCmd(parser.Command, "import", "Import a YAML or JSON document", `
Create the records of a document produced by "export". Records keep their
ids unless --fresh-ids is given.
`, &cmdImport{})
	mustAddCmd(parser.Command, "serve", "Serve the HTTP API", `
Serve the JSON API over the configured store, with Prometheus metrics at
/metrics. Stops gracefully on SIGINT or SIGTERM.
`, &cmdServe{})

	mustParseArgs(parser)
}

func mustAddCmd(cmd *flags.Command, name, short, long string, data interface{}) *flags.Command {
	c, err := cmd.AddCommand(name, short, long, data)
	if err != nil {
		log.WithField("err", err).Fatal("failed to add command")
	}
	return c
}

// mustParseArgs parses arguments and runs the selected command, exiting
// non-zero on failure
func mustParseArgs(parser *flags.Parser) {
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		var flagErr, ok = err.(*flags.Error)
		if ok && flagErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		if ok && flagErr.Type == flags.ErrCommandRequired {
			os.Stderr.WriteString("\n")
			parser.WriteHelp(os.Stderr)
		}
		if !ok && parser.Options&flags.PrintErrors == 0 {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
