// Package scripts embeds the built-in Risor analysis scripts so the CLI
// works without a scripts directory on disk.
package scripts

import "embed"

//go:embed analysis
var FS embed.FS
