// Package output prints health records to the report stream, one record per
// line (json, text) or per document (yaml).
package output
