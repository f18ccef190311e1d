package config

// ConversionConfig tunes how pipelines are lowered.
type ConversionConfig struct {
	// Drop derived fields and data fields that no model element references.
	PruneUnusedFields bool `yaml:"prune_unused_fields"`

	// Lower `not (a < b)` to `a >= b` instead of wrapping it in a `not` apply.
	NegateComparisons bool `yaml:"negate_comparisons"`

	// Attach feature importances when the estimator exposes them.
	FeatureImportances bool `yaml:"feature_importances"`
}

// DefaultConversionConfig returns the lowering defaults.
func DefaultConversionConfig() ConversionConfig {
	return ConversionConfig{
		PruneUnusedFields:  true,
		NegateComparisons:  false,
		FeatureImportances: true,
	}
}

// HeaderConfig fills the document Header element.
type HeaderConfig struct {
	ApplicationName    string `yaml:"application_name"`
	ApplicationVersion string `yaml:"application_version"`
	Copyright          string `yaml:"copyright,omitempty"`
	Description        string `yaml:"description,omitempty"`
}
