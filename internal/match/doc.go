// Package match scores how likely two catalog records describe the same
// real-world item. Identifier fields (ISBNs, source permalinks) short-circuit
// to a fixed certain-match value; ordinary fields contribute a weighted token
// overlap. Scores are relative confidence values, not probabilities.
package match
