package sklearn

import (
	"fmt"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
)

// Normalization methods of a RegressionModel.
const (
	NormalizationLogit   = "logit"
	NormalizationSoftmax = "softmax"
)

// =============================================================================
// REGRESSORS
// =============================================================================

// LinearRegressor encodes the single-target linear models (LinearRegression, Ridge).
type LinearRegressor struct {
	step.Base
}

func newLinearRegressor(_ *step.Registry, n *node.Node) (step.Step, error) {
	return &LinearRegressor{Base: step.NewBase(n)}, nil
}

func (r *LinearRegressor) MiningFunction() pmml.MiningFunction { return pmml.Regression }
func (r *LinearRegressor) IsSupervised() bool                  { return true }

func (r *LinearRegressor) NumberOfFeatures() int {
	coefs, err := r.GetMatrix("coef_")
	if err != nil || len(coefs) == 0 {
		return r.Base.NumberOfFeatures()
	}
	return len(coefs[0])
}

func (r *LinearRegressor) EncodeModel(schema *encoder.Schema, enc *encoder.Encoder) (pmml.Model, error) {
	coefs, err := r.GetMatrix("coef_")
	if err != nil {
		return nil, err
	}
	if len(coefs) != 1 {
		return nil, fmt.Errorf("%w: %d regression targets", step.ErrUnsupported, len(coefs))
	}
	intercepts, err := vector(r, "intercept_")
	if err != nil {
		return nil, err
	}
	if len(intercepts) != 1 {
		return nil, &step.ArityError{Class: r.ClassName(), What: "intercept(s)", Expected: 1, Actual: len(intercepts)}
	}

	table, err := regressionTable(r, schema.Features(), coefs[0], intercepts[0], enc)
	if err != nil {
		return nil, err
	}
	return &pmml.RegressionModel{
		ModelBase: pmml.ModelBase{FunctionName: pmml.Regression},
		Tables:    []pmml.RegressionTable{table},
	}, nil
}

// regressionTable builds one linear equation over the features. Zero coefficients
// are left out; binary indicators become categorical predictors of their parent field.
func regressionTable(s step.Step, features []encoder.Feature, coefs []float64, intercept float64, enc *encoder.Encoder) (pmml.RegressionTable, error) {
	table := pmml.RegressionTable{Intercept: intercept}
	if len(coefs) != len(features) {
		return table, &step.ArityError{Class: s.ClassName(), What: "coefficient(s)", Expected: len(features), Actual: len(coefs)}
	}
	for i, f := range features {
		coef := coefs[i]
		if coef == 0 {
			continue
		}
		if bf, ok := f.(encoder.BinaryFeature); ok {
			table.CategoricalPredictors = append(table.CategoricalPredictors, pmml.CategoricalPredictor{
				Name:        bf.Name(),
				Value:       bf.Value(),
				Coefficient: coef,
			})
			continue
		}
		cf, err := f.ToContinuous(enc)
		if err != nil {
			return table, err
		}
		table.NumericPredictors = append(table.NumericPredictors, pmml.NumericPredictor{Name: cf.Name(), Coefficient: coef})
	}
	return table, nil
}

// =============================================================================
// LOGISTIC REGRESSION
// =============================================================================

// LogisticRegression encodes binary (logit) and multinomial (softmax) models.
// One-vs-rest models over more than two classes are not supported.
type LogisticRegression struct {
	step.Base
}

func newLogisticRegression(_ *step.Registry, n *node.Node) (step.Step, error) {
	if _, err := n.GetOptionalEnum("multi_class", "auto", "auto", "ovr", "multinomial", "deprecated"); err != nil {
		return nil, err
	}
	return &LogisticRegression{Base: step.NewBase(n)}, nil
}

func (c *LogisticRegression) MiningFunction() pmml.MiningFunction { return pmml.Classification }
func (c *LogisticRegression) IsSupervised() bool                  { return true }
func (c *LogisticRegression) Classes() ([]any, error)             { return c.GetList("classes_") }

func (c *LogisticRegression) NumberOfFeatures() int {
	coefs, err := c.GetMatrix("coef_")
	if err != nil || len(coefs) == 0 {
		return c.Base.NumberOfFeatures()
	}
	return len(coefs[0])
}

// multiClass resolves "auto" the way the fitted estimator did: liblinear fits one-vs-rest.
func (c *LogisticRegression) multiClass() string {
	mc, _ := c.GetOptionalEnum("multi_class", "auto", "auto", "ovr", "multinomial", "deprecated")
	if mc == "auto" || mc == "deprecated" {
		if solver, _, _ := c.GetOptionalString("solver"); solver == "liblinear" {
			return "ovr"
		}
		return "multinomial"
	}
	return mc
}

func (c *LogisticRegression) EncodeModel(schema *encoder.Schema, enc *encoder.Encoder) (pmml.Model, error) {
	label, ok := schema.Label().(encoder.CategoricalLabel)
	if !ok {
		return nil, fmt.Errorf("%w: expected a categorical label", step.ErrUnsupported)
	}
	classes := label.Values()

	coefs, err := c.GetMatrix("coef_")
	if err != nil {
		return nil, err
	}
	intercepts, err := vector(c, "intercept_")
	if err != nil {
		return nil, err
	}
	if len(intercepts) != len(coefs) {
		return nil, &step.ArityError{Class: c.ClassName(), What: "intercept(s)", Expected: len(coefs), Actual: len(intercepts)}
	}

	model := &pmml.RegressionModel{
		ModelBase: pmml.ModelBase{
			FunctionName: pmml.Classification,
			Output:       probabilityOutput(classes),
		},
	}

	switch {
	case len(classes) == 2 && len(coefs) == 1:
		active, err := regressionTable(c, schema.Features(), coefs[0], intercepts[0], enc)
		if err != nil {
			return nil, err
		}
		active.TargetCategory = classes[1]
		model.NormalizationMethod = NormalizationLogit
		model.Tables = []pmml.RegressionTable{active, {TargetCategory: classes[0]}}

	case len(classes) > 2 && len(coefs) == len(classes):
		if c.multiClass() != "multinomial" {
			return nil, fmt.Errorf("%w: one-vs-rest classification over %d classes", step.ErrUnsupported, len(classes))
		}
		model.NormalizationMethod = NormalizationSoftmax
		for i, class := range classes {
			table, err := regressionTable(c, schema.Features(), coefs[i], intercepts[i], enc)
			if err != nil {
				return nil, err
			}
			table.TargetCategory = class
			model.Tables = append(model.Tables, table)
		}

	default:
		return nil, &step.ArityError{Class: c.ClassName(), What: "coefficient row(s)", Expected: coefficientRows(len(classes)), Actual: len(coefs)}
	}
	return model, nil
}

func coefficientRows(classes int) int {
	if classes == 2 {
		return 1
	}
	return classes
}

// probabilityOutput declares one "probability(class)" output field per class.
func probabilityOutput(classes []string) *pmml.Output {
	out := &pmml.Output{}
	for _, class := range classes {
		out.Fields = append(out.Fields, pmml.OutputField{
			Name:     step.FieldName("probability", class),
			OpType:   pmml.Continuous,
			DataType: pmml.Double,
			Feature:  "probability",
			Value:    class,
		})
	}
	return out
}
