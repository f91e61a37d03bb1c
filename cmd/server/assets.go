package main

import (
	"embed"
	"io/fs"
	"net/http"
)

// Browser client for the REST API, served from the binary.
//
//go:embed web/*
var embeddedWeb embed.FS

func webHandler() (http.Handler, error) {
	sub, err := fs.Sub(embeddedWeb, "web")
	if err != nil {
		return nil, err
	}
	return http.FileServer(http.FS(sub)), nil
}
