// Package config provides configuration structures and utilities for deckqc.
// It defines the main options for deck checking, report generation, the
// remediation advisor, and the web UI, plus the YAML config file format.
package config
