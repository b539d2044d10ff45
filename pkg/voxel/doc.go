// Package voxel rasterises simple geometry into dense binary volumes.
//
// A [Mask] is a 3D array of 0/1 voxels stored in C order: the voxel at
// (x, y, z) lives at index (x*Sy + y)*Sz + z. A [Grid] is the matching
// integer accumulator used to union many renders before thresholding.
//
// Primitives:
//
//   - [Line] and [Line3] discretise a straight segment into integer points
//   - [Sphere] marks every voxel within a radius of a centre
//   - [SpheresSegment] stacks spheres along a discretised segment
//   - [EDTSegment] thresholds an exact Euclidean distance transform seeded
//     with the discretised segment
//
// Both segment renderers treat the radius as inclusive and always return a
// mask of exactly the requested shape. Masks can be serialised with [Encode]
// and [Decode], and exported as TIFF slices with [WriteTIFFSlices].
package voxel
