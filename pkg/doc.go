// Package pkg provides the core libraries for tracetube.
//
// # Overview
//
// Tracetube turns a traced neuron skeleton (a tree of 3D points) into a
// voxel mask: a binary volume with every voxel near the skeleton set. The
// pkg directory holds one package per stage plus the infrastructure the
// stages share.
//
// # Architecture
//
//	trace.json
//	     ↓
//	[traceio]        decode the trace document
//	     ↓
//	[trace]          validate: 3D points, unique, a single tree
//	     ↓
//	[trace/branch]   split into linear branches
//	     ↓
//	[spline]         fit a B-spline per branch, link them into a tree
//	     ↓
//	[tube]           render each branch as a tube of spheres
//	     ↓
//	[voxel]          mask storage, encoding and TIFF slices
//
// [pipeline] runs the stages end to end with caching, tracing and metrics
// hooks. [neighborhood] crops centred windows out of flat arrays, the way
// feature extractors sample around a traced point.
//
// # Quick Start
//
//	g, _ := traceio.ImportJSON("neuron.json")
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	res, err := runner.Execute(ctx, g, pipeline.Options{
//	    Shape:  [3]int{256, 256, 128},
//	    Radius: 2,
//	})
//	if err != nil {
//	    // errors.GetCode(err) names the failed precondition
//	}
//	data, _ := voxel.Encode(res.Mask, voxel.Zstd)
//
// # Infrastructure
//
// [cache] stores fitted trees and rendered masks in a file, badger, redis or
// mongo backend. [errors] defines the error codes every stage reports.
// [observability] exposes hook interfaces with a Prometheus implementation.
// [httputil] holds the JSON response helpers used by the HTTP API.
// [buildinfo] carries version metadata injected at link time.
package pkg
