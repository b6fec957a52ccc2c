// Package server exposes deck QC over HTTP.
//
// The server embeds a single-page upload form and serves a small JSON
// API: POST /api/qc accepts a deck file and returns the QC report,
// POST /api/ask forwards questions to the advisor, and GET /healthz
// reports liveness. With ?format=html the QC endpoint renders the
// Markdown report through goldmark so a browser shows a readable page
// instead of raw JSON.
package server
