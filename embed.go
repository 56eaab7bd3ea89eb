package autoblog

import "embed"

// EmbeddedAssets contains the control panel stylesheet (panel.css).
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
