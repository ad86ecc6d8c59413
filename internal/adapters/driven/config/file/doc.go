// Package file provides a TOML-backed settings store. Settings live in
// a single config file under the fundqa config directory; API keys are
// taken from the environment and never written to disk.
package file
