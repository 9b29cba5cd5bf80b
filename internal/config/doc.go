// Package config provides configuration structures and utilities for sitediff.
// It defines the origins being compared, fetch and crawl settings, cache
// gating, the sanitization rule tree and report preferences, and loads them
// from a .sitediff.yaml file.
package config
