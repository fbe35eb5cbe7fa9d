// estateadmin | 2026
// main.go

// Command keygen writes a development ES256 key pair so the API can be
// run against a local stand-in identity provider.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/mseddi/estateadmin/internal/auth"
)

func main() {
	privatePath := flag.String(
		"private", "keys/idp_private.pem", "private key output path",
	)
	publicPath := flag.String(
		"public", "keys/idp_public.pem", "public key output path",
	)
	flag.Parse()

	if err := auth.GenerateKeyPair(*privatePath, *publicPath); err != nil {
		slog.Error("key generation failed", "error", err)
		os.Exit(1)
	}

	slog.Info("key pair written",
		"private", *privatePath,
		"public", *publicPath,
	)
}
