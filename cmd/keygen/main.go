// AngelaMos | 2026
// main.go

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/angelamos/learnify/internal/auth"
)

// Generates the ES256 key pair the API signs tokens with.
func main() {
	privatePath := flag.String("private", "keys/private.pem", "private key output path")
	publicPath := flag.String("public", "keys/public.pem", "public key output path")
	flag.Parse()

	if err := auth.GenerateKeyPair(*privatePath, *publicPath); err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}

	fmt.Println("wrote", *privatePath, "and", *publicPath)
}
