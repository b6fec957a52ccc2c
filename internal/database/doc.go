// Package database stores QC history in SQLite.
//
// Every completed check can be saved as a JSON row keyed by deck path,
// which gives the compare command something to diff against and lets
// repeated checks of the same deck show drift over time. The package
// uses modernc.org/sqlite, a pure-Go driver, so the binary stays
// CGO-free.
package database
