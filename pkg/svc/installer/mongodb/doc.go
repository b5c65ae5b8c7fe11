// Package mongodbinstaller installs a standalone MongoDB release with
// development credentials.
package mongodbinstaller
