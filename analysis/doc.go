// Package analysis compares the two fitted specifications and turns the
// numbers into the study's written findings.
package analysis
