// Package subtitle renders and merges SRT and plain-text transcript output.
// All time formatting uses the SRT convention (comma millisecond separator)
// and entries are separated by blank lines.
package subtitle
