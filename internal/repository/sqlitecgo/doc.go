// Package sqlitecgo provides an infostore backend on github.com/mattn/go-sqlite3,
// the cgo binding of the SQLite C library. It shares file handling with the
// pure-Go sqlite backend and differs only in driver and error decoding.
//
// The package is empty unless built with cgo.
package sqlitecgo
