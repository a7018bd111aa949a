package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bawdo/typeq/dialect"
)

var capabilitiesCmd = &cobra.Command{
	Use:     "capabilities",
	Aliases: []string{"caps"},
	Short:   "Show what each dialect supports",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), capabilityTable())
		return err
	},
}

var capabilityColumns = []string{"dialect", "dual", "placeholder", "multi-insert", "upsert", "sequences", "temp tables"}

// capabilityTable tabulates the descriptor of every known dialect.
func capabilityTable() string {
	var rows [][]string
	for _, name := range dialect.Names() {
		d, _ := dialect.Lookup(name)
		rows = append(rows, capabilityRow(d))
	}
	return formatTable(capabilityColumns, rows)
}

func capabilityRow(d dialect.Dialect) []string {
	dual := "-"
	if d.RequiresFromDual() {
		dual = d.Dual()
	}
	return []string{
		d.Name(),
		dual,
		d.Placeholder(1),
		yesNo(d.SupportsMultiInsert()),
		upsertStyle(d.MergeInfo()),
		yesNo(d.SequenceInfo().SupportsSequences()),
		tempTableSupport(d.TempTableInfo()),
	}
}

func upsertStyle(m dialect.MergeInfo) string {
	if !m.SupportsUpsert() {
		return "no"
	}
	switch m.(type) {
	case dialect.OnConflictMerge:
		return "on conflict"
	case dialect.DuplicateKeyMerge:
		return "on duplicate key (updated=" + strconv.FormatInt(m.UpdatedResult(), 10) + ")"
	default:
		return "merge"
	}
}

func tempTableSupport(t *dialect.TempTableInfo) string {
	switch {
	case t.SupportsGlobal() && t.SupportsLocal():
		return "global, local"
	case t.SupportsGlobal():
		return "global"
	case t.SupportsLocal():
		return "local"
	default:
		return "no"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
