// Package errors provides coded errors for the delg tooling. The delegate
// core itself never returns errors; these are used by configuration, the
// stress harness and the command line.
package errors
