// Package config provides configuration structures and utilities for seoscan.
// It defines the main configuration options for scanning sites, crawling
// settings, and report generation preferences.
package config
