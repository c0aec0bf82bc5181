// Package dataset reads customer feature vectors into a model.Dataset.
//
// Two record formats are understood:
//
//   - FormatText: whitespace-separated numbers. With a Schema the values
//     form a token stream cut into records of Schema.Dim() values, so a
//     record may span lines. Without one, each line is a record and the
//     first line fixes the dimension. Blank lines and lines starting with
//     '#' are skipped.
//   - FormatCSV: comma-separated values with an optional header row, as
//     exported from a spreadsheet. With a header and a Schema, columns are
//     picked by name so exports with extra columns load unchanged.
//
// Load opens a blob from any blobstore.BlobStore, transparently
// decompresses zstd, gzip and lz4 input, and honors the IO limit of a
// resource.Controller:
//
//	ds, stats, err := dataset.Load(ctx, store, "customers.csv.zst", dataset.Options{
//	    Schema: dataset.DemographicSchema,
//	})
package dataset
