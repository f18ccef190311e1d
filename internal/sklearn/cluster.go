package sklearn

import (
	"fmt"
	"strconv"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
)

// KMeans encodes a center-based clustering model with squared euclidean distance.
// Clusters are identified by their index.
type KMeans struct {
	step.Base
}

func newKMeans(_ *step.Registry, n *node.Node) (step.Step, error) {
	return &KMeans{Base: step.NewBase(n)}, nil
}

func (k *KMeans) MiningFunction() pmml.MiningFunction { return pmml.Clustering }
func (k *KMeans) IsSupervised() bool                  { return false }

func (k *KMeans) NumberOfFeatures() int {
	centers, err := k.GetMatrix("cluster_centers_")
	if err != nil || len(centers) == 0 {
		return k.Base.NumberOfFeatures()
	}
	return len(centers[0])
}

func (k *KMeans) EncodeModel(schema *encoder.Schema, enc *encoder.Encoder) (pmml.Model, error) {
	centers, err := k.GetMatrix("cluster_centers_")
	if err != nil {
		return nil, err
	}
	if len(centers) == 0 {
		return nil, &node.AttributeError{Class: k.ClassName(), Attribute: "cluster_centers_", Err: node.ErrAttributeType, Detail: "no clusters"}
	}

	model := &pmml.ClusteringModel{
		ModelBase:         pmml.ModelBase{FunctionName: pmml.Clustering},
		ModelClass:        "centerBased",
		NumberOfClusters:  len(centers),
		ComparisonMeasure: pmml.ComparisonMeasure{Kind: "distance", SquaredEuclidean: &struct{}{}},
	}
	for _, f := range schema.Features() {
		cf, err := f.ToContinuous(enc)
		if err != nil {
			return nil, err
		}
		model.ClusteringFields = append(model.ClusteringFields, pmml.ClusteringField{Field: cf.Name()})
	}

	output := &pmml.Output{Fields: []pmml.OutputField{{
		Name:     "cluster",
		OpType:   pmml.Categorical,
		DataType: pmml.String,
		Feature:  "predictedValue",
	}}}
	for i, center := range centers {
		if len(center) != schema.NumberOfFeatures() {
			return nil, &step.ArityError{Class: k.ClassName(), What: "center coordinate(s)", Expected: schema.NumberOfFeatures(), Actual: len(center)}
		}
		id := strconv.Itoa(i)
		values := make([]string, len(center))
		for j, v := range center {
			values[j] = step.FormatNumber(v)
		}
		model.Clusters = append(model.Clusters, pmml.Cluster{
			ID:    id,
			Array: pmml.Array{N: len(values), Type: pmml.ArrayReal, Values: values},
		})
		output.Fields = append(output.Fields, pmml.OutputField{
			Name:     fmt.Sprintf("affinity(%s)", id),
			OpType:   pmml.Continuous,
			DataType: pmml.Double,
			Feature:  "affinity",
			Value:    id,
		})
	}
	model.Output = output
	return model, nil
}
