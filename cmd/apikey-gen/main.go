package main

import (
	"flag"
	"fmt"
	"log"

	"wtyczki.backend/pkg/crypto"
)

// Generates an API key the way the backend does, printing the plaintext
// once together with the hash and display prefix for manual inserts.
func main() {
	count := flag.Int("n", 1, "number of keys to generate")
	flag.Parse()

	if *count <= 0 || *count > 100 {
		log.Fatalf("invalid count: %d (must be 1..100)", *count)
	}

	for i := 0; i < *count; i++ {
		key, err := crypto.GenerateAPIKey()
		if err != nil {
			log.Fatalf("failed to generate api key: %v", err)
		}

		fmt.Printf("API_KEY=%s\n", key)
		fmt.Printf("KEY_PREFIX=%s\n", key[:crypto.APIKeyDisplayLen])
		fmt.Printf("KEY_HASH=%s\n", crypto.HashAPIKey(key))
		if i < *count-1 {
			fmt.Println()
		}
	}
}
