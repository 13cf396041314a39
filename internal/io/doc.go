// Package ioutils provides file system helpers shared by the log file and
// the sqlite database.
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
//	// Ensure the directory of a file exists
//	err := ioutils.EnsureParentDir("data/tracks.db")
package ioutils
