// Package main provides the entry point for the webwatch CLI.
//
// webwatch checks a set of web pages for content changes and records the
// results in JSON files a dashboard can poll.
//
// Usage:
//
//	webwatch check
//	webwatch encrypt <url>
//
// See --help for all available options.
package main

// main is the entry point for webwatch.
func main() {
	Execute()
}
