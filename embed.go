package adminpanel

import "embed"

// EmbeddedAssets contains the static assets shipped with the panel:
// admin.css and placeholder.svg.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
