// Package download streams response content to disk with optional
// checksum validation and progress reporting.
//
// [ToFile] opens a [Source] only when the destination actually has to be
// written, streams it into a temporary file next to the destination and
// renames it into place on success:
//
//	err := download.ToFile(ctx, src, "/tmp/report.csv", logger,
//		download.WithChecksum(sha256.New(), expectedHex),
//		download.WithSkipExisting(),
//	)
//
// Most callers should use Client.Download from
// [github.com/adamwoolhether/apiclient/client], which builds the Source
// from a GET request and re-exports these options.
package download
