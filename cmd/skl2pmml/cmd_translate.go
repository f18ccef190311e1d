package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/translator"
)

var (
	translateFeatures  []string
	translatePredicate bool
	translateVariable  string
)

// translateCmd lowers a single formula
var translateCmd = &cobra.Command{
	Use:   "translate <formula>",
	Short: "Lower a formula into a PMML expression or predicate",
	Long: `Translates a formula over the row variable into its PMML form and prints
it in prefix notation. Features are declared in column order as name:type,
where type is one of double, float, integer, string or boolean.

Examples:
  skl2pmml translate -f a:double -f b:double "X[0] + X[1] * 2"
  skl2pmml translate -f a:double --predicate "X[0] > 1 and X[0] < 5"`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringArrayVarP(&translateFeatures, "feature", "f", nil, "Feature as name:type, in column order")
	translateCmd.Flags().BoolVar(&translatePredicate, "predicate", false, "Translate a boolean predicate instead of an expression")
	translateCmd.Flags().StringVar(&translateVariable, "variable", translator.DefaultVariable, "Name of the row variable")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	c, _ := settings()

	features := make([]encoder.Feature, 0, len(translateFeatures))
	for _, spec := range translateFeatures {
		f, err := parseFeature(spec)
		if err != nil {
			return err
		}
		features = append(features, f)
	}

	scope := translator.Scope{Variable: translateVariable, Features: features}
	tr := translator.New(scope, translator.WithNegateComparisons(c.Conversion.NegateComparisons))
	ctx := commandContext(cmd)
	w := cmd.OutOrStdout()

	if translatePredicate {
		p, err := tr.TranslatePredicate(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, pmml.FormatPredicate(p))
		return nil
	}

	t, err := tr.TranslateExpression(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s\n", pmml.Format(t.Expression), mutedStyle.Render("("+string(t.DataType)+")"))
	return nil
}

// parseFeature reads a name:type feature declaration. Numeric features are continuous.
func parseFeature(spec string) (encoder.Feature, error) {
	name, typ, ok := strings.Cut(spec, ":")
	if !ok || name == "" {
		return nil, fmt.Errorf("invalid feature %q: expected name:type", spec)
	}
	dataType := pmml.DataType(typ)
	switch dataType {
	case pmml.Double, pmml.Float, pmml.Integer:
		return encoder.NewContinuousFeature(name, dataType), nil
	case pmml.String:
		return encoder.NewStringFeature(name), nil
	case pmml.Boolean:
		return encoder.NewCategoricalFeature(name, pmml.Boolean, []string{"false", "true"}), nil
	}
	return nil, fmt.Errorf("invalid feature %q: unknown type %q", spec, typ)
}
