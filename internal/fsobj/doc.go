// Package fsobj wraps a filesystem path with a lazily-fetched os.Lstat
// result, so an operator (such as an external ls) can pass a File value
// downstream without paying for a stat call until something actually
// asks for size, mode, or modification time.
package fsobj
