// Package textutil provides the text normalization primitives used by the
// similarity scorer and the source adapters.
//
// The primary use cases are:
//   - Folding titles and names into comparable lowercase ASCII-ish forms
//   - Tokenizing multi-value field content for overlap scoring
//   - Folding identifier values (ISBNs, permalinks) for exact comparison
//
// Tokenization lowercases text, strips diacritics, splits on non-alphanumeric
// characters, and filters tokens shorter than 2 characters.
package textutil
