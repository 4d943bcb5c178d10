// Package model defines the data structures shared between the crawl engine,
// the page analyzer, the score aggregator, and the report writers.
//
// The types here are deliberately free of behavior beyond construction and
// small accessors: pages are produced once by the analyzer, owned by the
// crawl session, and consumed read-only by the scorer. Field names on the
// report types are part of the output file format and must not change.
package model
