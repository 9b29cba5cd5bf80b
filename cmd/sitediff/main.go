// Package main provides the entry point for the sitediff CLI.
//
// sitediff compares a site before and after a migration page by page. Both
// origins are fetched, non-deterministic noise such as CSRF tokens and
// timestamps is sanitized away, and the remaining differences are reported.
//
// Usage:
//
//	sitediff crawl --before https://old.example.com/ --after https://new.example.com/
//	sitediff diff
//
// See --help for all available options.
package main

// main is the entry point for sitediff.
func main() {
	Execute()
}
