package lower

import "strconv"

// mangledSymbolV0 computes the "private" ABI's simple length-prefixed
// mangled form: the decimal length of the raw symbol, an underscore, then
// the raw symbol itself (spec.md §4.1, e.g. "3_foo").
func mangledSymbolV0(raw string) string {
	return strconv.Itoa(len(raw)) + "_" + raw
}
