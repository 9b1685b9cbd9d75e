// Package report aggregates doctest results and prints them for a terminal.
//
// [Print] writes each failure with its document location, the relevant part
// of the diagnostic and, for undefined names, a hint pointing at the globals
// section of the setup file. It finishes with the pass, skip and fail
// counts. Colors are rendered with lipgloss and degrade to plain text when
// the writer is not a terminal.
package report
