package main

import (
	"embed"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/seuros/posturai/internal/cli"
	"github.com/seuros/posturai/internal/logging"
)

//go:embed VERSION
var versionFile string

//go:embed views
var viewsFS embed.FS

//go:embed assets
var assetsFS embed.FS

var executeCLI = cli.Execute

func run() error {
	version := strings.TrimSpace(versionFile)

	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return err
	}
	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		return err
	}
	return executeCLI(version, views, assets)
}

func main() {
	if err := run(); err != nil {
		logging.Fatal("posturai execution failed", zap.Error(err))
	}
}
