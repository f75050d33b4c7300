// Package conf loads the dotted-key configuration namespace that
// clusters, db profiles, and other remote settings are read from. The
// original engine sourced ~/.oshrc as executable Python and pulled
// values out of the resulting namespace by dotted path; this replaces
// that with a YAML file read once into a nested map, looked up the same
// way.
package conf
