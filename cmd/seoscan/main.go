// Package main provides the entry point for the seoscan CLI.
//
// seoscan crawls a website and grades it against common on-page SEO
// checks: titles, meta descriptions, heading structure, image alt text,
// load times, and more.
//
// Usage:
//
//	seoscan scan <url>
//	seoscan scan --json <url>
//
// See --help for all available options.
package main

// main is the entry point for seoscan.
func main() {
	Execute()
}
