// Package message defines the values that flow from a supervised backend to
// its host: output lines tagged by origin and the exit status reported by the
// lifecycle line.
package message
