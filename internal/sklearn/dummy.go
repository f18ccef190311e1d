package sklearn

import (
	"fmt"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
)

// DummyRegressor predicts its fitted constant_ with an intercept-only regression table.
type DummyRegressor struct {
	step.Base
}

func newDummyRegressor(_ *step.Registry, n *node.Node) (step.Step, error) {
	return &DummyRegressor{Base: step.NewBase(n)}, nil
}

func (r *DummyRegressor) MiningFunction() pmml.MiningFunction { return pmml.Regression }
func (r *DummyRegressor) IsSupervised() bool                  { return true }

func (r *DummyRegressor) EncodeModel(_ *encoder.Schema, _ *encoder.Encoder) (pmml.Model, error) {
	constants, err := r.GetMatrix("constant_")
	if err != nil {
		return nil, err
	}
	if len(constants) != 1 || len(constants[0]) != 1 {
		return nil, fmt.Errorf("%w: multi-target dummy regression", step.ErrUnsupported)
	}
	return &pmml.RegressionModel{
		ModelBase: pmml.ModelBase{FunctionName: pmml.Regression},
		Tables:    []pmml.RegressionTable{{Intercept: constants[0][0]}},
	}, nil
}

// DummyClassifier scores a single-node tree whose score distribution holds the
// predicted class probabilities.
type DummyClassifier struct {
	step.Base
}

func newDummyClassifier(_ *step.Registry, n *node.Node) (step.Step, error) {
	strategy, err := n.GetOptionalEnum("strategy", "prior", "prior", "most_frequent", "constant", "uniform", "stratified")
	if err != nil {
		return nil, err
	}
	switch strategy {
	case "uniform", "stratified":
		return nil, fmt.Errorf("%w: randomized strategy '%s'", step.ErrUnsupported, strategy)
	}
	return &DummyClassifier{Base: step.NewBase(n)}, nil
}

func (c *DummyClassifier) MiningFunction() pmml.MiningFunction { return pmml.Classification }
func (c *DummyClassifier) IsSupervised() bool                  { return true }
func (c *DummyClassifier) Classes() ([]any, error)             { return c.GetList("classes_") }

// probabilities returns predict_proba of the fitted strategy.
func (c *DummyClassifier) probabilities(classes []string) ([]float64, error) {
	strategy, err := c.GetOptionalEnum("strategy", "prior", "prior", "most_frequent", "constant")
	if err != nil {
		return nil, err
	}
	probs := make([]float64, len(classes))

	switch strategy {
	case "prior":
		return requiredVector(c, "class_prior_", len(classes))
	case "most_frequent":
		priors, err := requiredVector(c, "class_prior_", len(classes))
		if err != nil {
			return nil, err
		}
		probs[argmax(priors)] = 1
	case "constant":
		v, ok := c.Get("constant")
		if !ok || v == nil {
			return nil, &node.AttributeError{Class: c.ClassName(), Attribute: "constant", Err: node.ErrMissingAttribute}
		}
		rendered, _ := step.ClassValues([]any{v})
		found := false
		for i, class := range classes {
			if class == rendered[0] {
				probs[i] = 1
				found = true
			}
		}
		if !found {
			return nil, &node.AttributeError{Class: c.ClassName(), Attribute: "constant", Err: node.ErrUnsupportedValue, Detail: fmt.Sprintf("'%s' is not a class", rendered[0])}
		}
	}
	return probs, nil
}

func (c *DummyClassifier) EncodeModel(schema *encoder.Schema, _ *encoder.Encoder) (pmml.Model, error) {
	label, ok := schema.Label().(encoder.CategoricalLabel)
	if !ok {
		return nil, fmt.Errorf("%w: expected a categorical label", step.ErrUnsupported)
	}
	classes := label.Values()
	if len(classes) == 0 {
		return nil, &node.AttributeError{Class: c.ClassName(), Attribute: "classes_", Err: node.ErrAttributeType, Detail: "no classes"}
	}
	probs, err := c.probabilities(classes)
	if err != nil {
		return nil, err
	}

	root := pmml.TreeNode{
		Score:     classes[argmax(probs)],
		Predicate: &pmml.True{},
	}
	for i, class := range classes {
		root.ScoreDistributions = append(root.ScoreDistributions, pmml.ScoreDistribution{
			Value:       class,
			RecordCount: probs[i],
			Probability: probs[i],
		})
	}
	return &pmml.TreeModel{
		ModelBase: pmml.ModelBase{
			FunctionName: pmml.Classification,
			Output:       probabilityOutput(classes),
		},
		Node: root,
	}, nil
}

// argmax returns the index of the first largest value.
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
