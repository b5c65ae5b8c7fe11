// Package notify renders user-facing status messages with consistent symbols
// and colors, and provides a progress group for tasks that run concurrently.
package notify
