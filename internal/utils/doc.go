// Package utils holds small string helpers shared by the extractor, the
// recovery client and the command-line tool: a rune-safe bounded [Prefix]
// used for diagnostic snippets, and [JSONToString] for log and CLI output.
package utils
