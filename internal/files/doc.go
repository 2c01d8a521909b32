// Package files loads raw tables from disk and handles the file-system
// chores around a cleaning run.
//
// Reader: Loads delimited text (.csv, .tsv, .txt) and Excel workbooks
// (.xlsx) into a table whose cells are all strings or missing. Delimited
// input may be UTF-8 (a byte order mark is dropped), Latin-1 or
// Windows-1252.
//
// Discovery: Finds loadable input files in a directory for batch runs.
//
// Manager: Checks and creates paths, derives batch output names and writes
// the sample messy CSV used to try the tools out.
//
// Example usage:
//
//	reader := files.NewReader(logger)
//	raw, err := reader.Load(ctx, "messy_data.csv", files.ReadOptions{})
//
//	discovery := files.NewDiscovery("/data")
//	inputs, err := discovery.FindTableFiles("incoming")
package files
