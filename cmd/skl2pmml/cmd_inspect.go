package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"skl2pmml/internal/convert"
	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
)

// inspectCmd shows the field catalogue of a conversion without writing it
var inspectCmd = &cobra.Command{
	Use:   "inspect <input>",
	Short: "Show the fields and model a conversion would produce",
	Long: `Converts the input in memory and prints the model summary, the data
fields with their role, and the derived fields with their expressions.
Fields the model never reads are listed as pruned.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	c, log := settings()

	root, err := node.DecodeFile(args[0])
	if err != nil {
		return err
	}
	res, err := convert.New(c, nil, log).Convert(commandContext(cmd), root)
	if err != nil {
		return err
	}
	renderInspection(cmd.OutOrStdout(), res)
	return nil
}

func renderInspection(w io.Writer, res *convert.Result) {
	base := res.Document.Model.Base()
	summary := newTable("Model", "property", "value")
	summary.addRow("function", string(base.FunctionName))
	if base.AlgorithmName != "" {
		summary.addRow("algorithm", base.AlgorithmName)
	}
	if base.ModelName != "" {
		summary.addRow("name", base.ModelName)
	}
	if mm, ok := res.Document.Model.(*pmml.MiningModel); ok {
		summary.addRow("segments", fmt.Sprintf("%d (%s)", len(mm.Segmentation.Segments), mm.Segmentation.MultipleModelMethod))
	}
	if len(base.Targets) > 0 {
		summary.addRow("targets", strings.Join(base.Targets, ", "))
	}
	fmt.Fprint(w, summary)

	data := newTable("Data fields", "name", "optype", "dataType", "role")
	derived := newTable("Derived fields", "name", "optype", "dataType", "expression", "role")
	for _, f := range res.Fields {
		role := fieldRole(res, base, f)
		if f.IsDerived() {
			derived.addRow(f.Name, string(f.OpType), string(f.DataType), pmml.Format(f.Expression), role)
			continue
		}
		data.addRow(f.Name, string(f.OpType), string(f.DataType), role)
	}
	fmt.Fprint(w, data)
	fmt.Fprint(w, derived)
}

func fieldRole(res *convert.Result, base *pmml.ModelBase, f encoder.Field) string {
	switch {
	case slices.Contains(base.Targets, f.Name):
		return "target"
	case res.Usage != nil && !res.Usage.Used(f.Name):
		return mutedStyle.Render("pruned")
	case f.IsDerived():
		return "used"
	}
	return "active"
}
