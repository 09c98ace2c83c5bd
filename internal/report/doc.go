// Package report drives a run: it resolves the user's packages and the
// health aggregate concurrently, then prints every health record found for
// an owned package.
package report
