package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds site-specific configuration for a single hostname.
// This allows customizing crawl behavior per site in a multi-site setup.
type SiteConfig struct {
	// Depth overrides the global crawl depth for this site.
	// If zero, the global CrawlDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// Delay overrides the global per-host request delay for this site.
	// If zero, the global CrawlDelay is used.
	// Written in the config file as a duration string (e.g., "2s", "500ms").
	Delay time.Duration `yaml:"delay,omitempty"`

	// UserAgent overrides the global User-Agent header for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// IgnorePatterns are URL patterns to skip during crawling.
	// Patterns are matched against the URL path using glob syntax.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL patterns to follow during crawling.
	// If specified, only URLs matching these patterns are crawled.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// UnmarshalYAML decodes a SiteConfig from YAML.
// The yaml package does not parse duration strings into time.Duration,
// so we decode the delay as a string and run it through time.ParseDuration.
func (sc *SiteConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Depth          int      `yaml:"depth"`
		Delay          string   `yaml:"delay"`
		UserAgent      string   `yaml:"userAgent"`
		IgnorePatterns []string `yaml:"ignorePatterns"`
		FollowPatterns []string `yaml:"followPatterns"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	sc.Depth = raw.Depth
	sc.UserAgent = raw.UserAgent
	sc.IgnorePatterns = raw.IgnorePatterns
	sc.FollowPatterns = raw.FollowPatterns

	if raw.Delay != "" {
		d, err := time.ParseDuration(raw.Delay)
		if err != nil {
			return fmt.Errorf("invalid delay %q: %w", raw.Delay, err)
		}
		sc.Delay = d
	}

	return nil
}

// File represents the structure of the .seoscan configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys should be the hostname without the protocol (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific hostname.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.Delay != 0 {
			result.Delay = siteConfig.Delay
		}
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if len(siteConfig.IgnorePatterns) > 0 {
			result.IgnorePatterns = siteConfig.IgnorePatterns
		}
		if len(siteConfig.FollowPatterns) > 0 {
			result.FollowPatterns = siteConfig.FollowPatterns
		}
	}

	return result
}
