// Package appfs exposes the app's embedded static files:
// goose migrations, email templates and misc assets.
package appfs

import "embed"

//go:embed assets migrations templates
var FS embed.FS
