package seq

import "reflect"

// ImportPath is the path submissions use to import this package
const ImportPath = "algoflow/seq"

// Symbols exports the package to the submission interpreter, in the layout
// produced by yaegi extract.
var Symbols = map[string]map[string]reflect.Value{
	ImportPath + "/seq": {
		"Counter": reflect.ValueOf((*Counter)(nil)),
		"New":     reflect.ValueOf(New),
		"Slice":   reflect.ValueOf((*Slice)(nil)),
	},
}
