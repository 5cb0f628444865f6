// Package segmentation partitions an image into regions of similar color
// and repaints each region with a color from a named scheme.
//
// Regions grow by 4-connected flood fill from a seed pixel, comparing each
// candidate to the seed color. Regions smaller than a minimum size are then
// merged into their closest-colored neighbor.
package segmentation
