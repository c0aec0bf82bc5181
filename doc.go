// Package segmenter groups customers into segments with k-means clustering.
//
// Each customer is a numeric feature vector (purchase history or
// demographics). A Segmenter runs Lloyd's algorithm over a dataset and
// returns K centroids plus the segment of every customer.
//
// # Quick Start
//
//	s, err := segmenter.KMeans(3).
//	    Seed(42).
//	    KMeansPlusPlus().
//	    Build()
//	if err != nil { ... }
//
//	res, err := s.FitVectors(ctx, rows)
//	if err != nil { ... }
//	fmt.Println(res.Sizes, res.Iterations, res.State)
//
// # Loading Data
//
// Datasets can come from the local filesystem or object storage:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("exports/"))
//	ds, err := s.Load(ctx, store, "customers.csv.gz", dataset.Options{
//	    Schema: dataset.DemographicSchema,
//	})
//	res, err := s.Fit(ctx, ds)
//
// # Termination
//
// A run ends when no centroid moves farther than epsilon, or after the
// iteration cap. Hitting the cap is a normal outcome reported through
// Result.State; Result.Err converts it to ErrNonConvergence for callers that
// want to fail on it.
//
// # Determinism
//
// All randomness comes from a PCG source seeded with Config.Seed, so a fixed
// seed and dataset always produce the same result, independent of the number
// of workers.
package segmenter
