// Package log provides secure logging with automatic sanitization of
// sensitive values, built on top of the standard slog package.
//
// deckqc logs configuration and advisor activity, and the advisor carries
// an LLM API key. The SecureHandler masks secret-bearing attributes
// (api_key, token, authorization and friends) before they reach the
// underlying handler, so even debug-level logs are safe to share.
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
