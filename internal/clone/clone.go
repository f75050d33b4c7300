package clone

import "github.com/geophile/osh/internal/pipeline"

// Of returns a deep, independent copy of tmpl, suitable for handing to a
// fork worker. See the package doc for why this can't be a plain
// reflection-based deep copy.
func Of(tmpl pipeline.Operator) pipeline.Operator {
	store := pipeline.NewFunctionStore()
	tmpl.ReplaceFunctionByReference(store)
	copy := tmpl.Clone()
	tmpl.RestoreFunction(store)
	copy.RestoreFunction(store)
	return copy
}
