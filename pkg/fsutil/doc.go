// Package fsutil provides filesystem helpers: home path expansion and the
// host scratch directories mounted into cluster nodes.
package fsutil
