// Package main runs the tern URL shortener HTTP service.
//
//	@title			Tern URL Shortener API
//	@version		1.0
//	@description	Shortens URLs to random fixed-length codes and redirects them back
//	@host			localhost:8080
//	@BasePath		/
//	@schemes		http https
package main

import (
	"go.uber.org/fx"

	_ "github.com/sp3dr4/tern/docs"
	fxModules "github.com/sp3dr4/tern/internal/fx"
)

func main() {
	fx.New(fxModules.HTTPServerModules).Run()
}
