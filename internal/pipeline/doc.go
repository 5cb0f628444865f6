// Package pipeline holds the ordered list of transforms applied to a source
// image, the JSON codec for it, and a background runner that recomputes the
// result whenever the pipeline or source changes.
//
// Recomputation always starts from the untouched source, so the output
// depends only on the source and the stage list.
package pipeline
