// Package spline fits parametric B-spline curves to ordered 3D points and
// assembles the curves of a decomposed trace into a Spline Tree.
//
// # Curves
//
// [Fit] produces a clamped B-spline [Curve] whose parameter is the
// cumulative chord length of the input points, so the curve domain runs
// from 0 to the polyline length. The first and last points are interpolated
// exactly; interior control points are found by linear least squares. Knots
// follow de Boor's averaging rule, which keeps the least-squares system well
// conditioned for any number of control points between degree+1 and the
// number of data points.
//
// # Trees
//
// [BuildTree] validates and decomposes a [trace.Graph] with package branch
// and fits one curve per branch. Each [TreeNode] records its parent branch,
// its children and the arc length on the parent where it attaches.
package spline
