// Package main provides a one-shot utility for invitation grant key generation.
//
// It emits the asymmetric keypair used to sign and verify invitation grants.
package main

import (
	"os"

	"github.com/wavezly/wavezly/internal/platform/config"
	"github.com/wavezly/wavezly/internal/tools/grantkey"
)

func main() {
	if err := grantkey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate grant key: %v", err)
	}
}
