package pmml

import (
	"encoding/xml"
)

// Model is a top-level or segment model element.
type Model interface {
	// Base returns the attributes and schema shared by every model element.
	Base() *ModelBase

	// FieldRefs lists the fields the model body reads, in document order.
	FieldRefs() []string
}

// ModelBase carries the attributes and leading elements common to all models.
type ModelBase struct {
	ModelName     string         `xml:"modelName,attr,omitempty"`
	FunctionName  MiningFunction `xml:"functionName,attr"`
	AlgorithmName string         `xml:"algorithmName,attr,omitempty"`
	MiningSchema  MiningSchema   `xml:"MiningSchema"`
	Output        *Output        `xml:"Output,omitempty"`

	// Targets names the label fields; the assembler turns them into target MiningFields.
	Targets []string `xml:"-"`

	// Importances maps feature field names to importance values.
	Importances map[string]float64 `xml:"-"`
}

func (b *ModelBase) Base() *ModelBase {
	return b
}

// SetImportance records a feature importance annotation.
func (b *ModelBase) SetImportance(field string, value float64) {
	if b.Importances == nil {
		b.Importances = make(map[string]float64)
	}
	b.Importances[field] = value
}

// MiningSchema lists the fields a model consumes.
type MiningSchema struct {
	Fields []MiningField `xml:"MiningField"`
}

// MiningField is one entry of a MiningSchema.
type MiningField struct {
	Name                    string    `xml:"name,attr"`
	UsageType               UsageType `xml:"usageType,attr,omitempty"`
	Importance              *float64  `xml:"importance,attr,omitempty"`
	Outliers                string    `xml:"outliers,attr,omitempty"`
	LowValue                string    `xml:"lowValue,attr,omitempty"`
	HighValue               string    `xml:"highValue,attr,omitempty"`
	MissingValueReplacement string    `xml:"missingValueReplacement,attr,omitempty"`
	MissingValueTreatment   string    `xml:"missingValueTreatment,attr,omitempty"`
	InvalidValueTreatment   string    `xml:"invalidValueTreatment,attr,omitempty"`
	InvalidValueReplacement string    `xml:"invalidValueReplacement,attr,omitempty"`
}

// Output declares result fields.
type Output struct {
	Fields []OutputField `xml:"OutputField"`
}

// OutputField is one declared result.
type OutputField struct {
	Name     string   `xml:"name,attr"`
	OpType   OpType   `xml:"optype,attr,omitempty"`
	DataType DataType `xml:"dataType,attr"`
	Feature  string   `xml:"feature,attr"`
	Value    string   `xml:"value,attr,omitempty"`
}

// =============================================================================
// REGRESSION
// =============================================================================

// RegressionModel is a (generalized) linear model.
type RegressionModel struct {
	XMLName xml.Name `xml:"RegressionModel"`
	ModelBase
	NormalizationMethod string            `xml:"normalizationMethod,attr,omitempty"`
	Tables              []RegressionTable `xml:"RegressionTable"`
}

// RegressionTable is one linear equation, per target category for classification.
type RegressionTable struct {
	Intercept             float64                `xml:"intercept,attr"`
	TargetCategory        string                 `xml:"targetCategory,attr,omitempty"`
	NumericPredictors     []NumericPredictor     `xml:"NumericPredictor"`
	CategoricalPredictors []CategoricalPredictor `xml:"CategoricalPredictor"`
}

// NumericPredictor is a coefficient of a continuous field.
type NumericPredictor struct {
	Name        string  `xml:"name,attr"`
	Coefficient float64 `xml:"coefficient,attr"`
}

// CategoricalPredictor is a coefficient of one category of a field.
type CategoricalPredictor struct {
	Name        string  `xml:"name,attr"`
	Value       string  `xml:"value,attr"`
	Coefficient float64 `xml:"coefficient,attr"`
}

func (m *RegressionModel) FieldRefs() []string {
	var refs []string
	for _, t := range m.Tables {
		for _, p := range t.NumericPredictors {
			refs = append(refs, p.Name)
		}
		for _, p := range t.CategoricalPredictors {
			refs = append(refs, p.Name)
		}
	}
	return refs
}

// =============================================================================
// CLUSTERING
// =============================================================================

// ClusteringModel is a center-based clustering model.
type ClusteringModel struct {
	XMLName xml.Name `xml:"ClusteringModel"`
	ModelBase
	ModelClass        string            `xml:"modelClass,attr"`
	NumberOfClusters  int               `xml:"numberOfClusters,attr"`
	ComparisonMeasure ComparisonMeasure `xml:"ComparisonMeasure"`
	ClusteringFields  []ClusteringField `xml:"ClusteringField"`
	Clusters          []Cluster         `xml:"Cluster"`
}

// ComparisonMeasure selects the distance function.
type ComparisonMeasure struct {
	Kind             string    `xml:"kind,attr"`
	SquaredEuclidean *struct{} `xml:"squaredEuclidean"`
}

// ClusteringField is one clustering input.
type ClusteringField struct {
	Field string `xml:"field,attr"`
}

// Cluster is one cluster center.
type Cluster struct {
	ID    string `xml:"id,attr"`
	Array Array  `xml:"Array"`
}

func (m *ClusteringModel) FieldRefs() []string {
	refs := make([]string, len(m.ClusteringFields))
	for i, f := range m.ClusteringFields {
		refs[i] = f.Field
	}
	return refs
}

// =============================================================================
// TREE
// =============================================================================

// TreeModel is a decision tree; a single-node tree scores a constant.
type TreeModel struct {
	XMLName xml.Name `xml:"TreeModel"`
	ModelBase
	Node TreeNode `xml:"Node"`
}

// TreeNode is one node of a TreeModel.
type TreeNode struct {
	Score              string              `xml:"score,attr,omitempty"`
	RecordCount        float64             `xml:"recordCount,attr,omitempty"`
	Predicate          Predicate
	ScoreDistributions []ScoreDistribution `xml:"ScoreDistribution"`
	Nodes              []TreeNode          `xml:"Node"`
}

// ScoreDistribution is the class frequency at a tree node.
type ScoreDistribution struct {
	Value       string  `xml:"value,attr"`
	RecordCount float64 `xml:"recordCount,attr"`
	Probability float64 `xml:"probability,attr"`
}

func (m *TreeModel) FieldRefs() []string {
	var refs []string
	var walk func(n *TreeNode)
	walk = func(n *TreeNode) {
		refs = append(refs, PredicateFields(n.Predicate)...)
		for i := range n.Nodes {
			walk(&n.Nodes[i])
		}
	}
	walk(&m.Node)
	return refs
}

// =============================================================================
// ENSEMBLES
// =============================================================================

// MiningModel combines member models through a Segmentation.
type MiningModel struct {
	XMLName xml.Name `xml:"MiningModel"`
	ModelBase
	Segmentation Segmentation `xml:"Segmentation"`
}

// Segmentation selects or combines member models.
type Segmentation struct {
	MultipleModelMethod string    `xml:"multipleModelMethod,attr"`
	Segments            []Segment `xml:"Segment"`
}

// Segment is one guarded member model.
type Segment struct {
	ID        string `xml:"id,attr"`
	Predicate Predicate
	Model     Model
}

func (m *MiningModel) FieldRefs() []string {
	var refs []string
	for _, s := range m.Segmentation.Segments {
		refs = append(refs, PredicateFields(s.Predicate)...)
		refs = append(refs, s.Model.FieldRefs()...)
	}
	return refs
}
