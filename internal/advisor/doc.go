// Package advisor turns QC issues into remediation guidance.
//
// BuildPlan is the deterministic heuristic: each issue maps to a known
// corrective action, so the CLI always produces a plan without network
// access. An Advisor optionally upgrades the plan through an LLM and
// answers free-form questions, grounding the prompt with documents
// recalled from the knowledge store. Every LLM path falls back to the
// heuristic, which keeps the issue list and plan usable offline.
package advisor
