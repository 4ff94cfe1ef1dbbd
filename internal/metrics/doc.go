// Package metrics measures lensed images.
//
// Line profiles and peak detection expose image splitting, while flux
// statistics compare the lensed field with its source. The analytic helpers
// give the exact point-lens answers the sampled images approximate.
package metrics
