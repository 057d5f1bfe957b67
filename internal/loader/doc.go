// Package loader turns schema, data and type library files into the generic
// documents that package rx compiles and checks.
//
// Documents are decoded by file extension:
//
//	| Extension    | Decoder                       | Documents per file |
//	|--------------|-------------------------------|--------------------|
//	| .yaml, .yml  | gopkg.in/yaml.v3              | one per "---"      |
//	| .json        | encoding/json                 | one per value      |
//	| .toml        | github.com/pelletier/go-toml  | one                |
//	| .md          | YAML frontmatter              | one                |
//
// Decoded trees are normalized so every decoder hands rx the same shapes:
// JSON numbers become int64 or float64, and TOML and YAML dates and times
// become their RFC 3339 text.
//
// # Type Libraries
//
// A library file declares prefixes and learned types:
//
//	prefixes:
//	  geo: "tag:example.com,2026:geo/"
//	types:
//	  - uri: /geo/point
//	    schema: {type: //seq, contents: [//num, //num]}
//
// [Loader.Registry] builds an rx registry from configured prefixes and any
// number of libraries, applied in order.
package loader
