// Package appfs embeds the templates shipped with the binaries.
package appfs

import "embed"

// FS holds `templates/email`, `templates/portal` and `templates/cli`.
//go:embed all:templates
var FS embed.FS

const (
	EmailTemplatesDir  = "templates/email"
	PortalTemplatesDir = "templates/portal"
	CLITemplatesDir    = "templates/cli"
)
