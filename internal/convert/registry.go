package convert

// The leaf step packages register their classes in the default registry.
import (
	_ "skl2pmml/internal/sklearn"
	_ "skl2pmml/internal/sklearn2pmml"
	_ "skl2pmml/internal/sklearnpandas"
)
