// Package process terminates the headless browser started for page snapshots
// and PDF rendering, including the helper processes it spawned.
package process
