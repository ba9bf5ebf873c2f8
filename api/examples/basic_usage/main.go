// Package main demonstrates basic usage of the zulu printer SDK.
// It reads a few variables, changes one and uploads a file.
//
// Run it against a real printer or a local zulu-sim:
//
//	go run ./cmd/zulu-sim --listen 127.0.0.1:9100 &
//	go run ./api/examples/basic_usage 127.0.0.1:9100 ./logo.grf
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/EzhovAndrew/zulu/api"
)

func main() {
	address := "127.0.0.1:9100"
	if len(os.Args) > 1 {
		address = os.Args[1]
	}

	config := api.DefaultConfig().
		WithAddress(address).
		WithTimeout(2 * time.Second).
		WithRetryAttempts(3)

	client, err := api.NewClient(config)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, key := range []string{"device.friendly_name", "device.product_name", "ip.https.enable"} {
		value, err := client.Get(ctx, key)
		if err != nil {
			if errors.Is(err, api.ErrConnectionFailed) {
				log.Fatalf("Printer at %s is unreachable: %v", address, err)
			}
			log.Fatalf("Failed to read %s: %v", key, err)
		}
		fmt.Printf("%-22s %s\n", key, value)
	}

	if err := client.Set(ctx, "device.friendly_name", "zulu-example"); err != nil {
		log.Fatalf("Failed to set value: %v", err)
	}
	fmt.Println("friendly name updated")

	if len(os.Args) > 2 {
		err := client.UploadFile(ctx, api.RAM, os.Args[2], "EXAMPLE.GRF")
		var inputErr *api.EncodingInputError
		if errors.As(err, &inputErr) {
			log.Fatalf("Cannot read %s: %v", inputErr.Path, inputErr.Err)
		}
		if err != nil {
			log.Fatalf("Upload failed: %v", err)
		}
		fmt.Println("uploaded", os.Args[2], "to R:EXAMPLE.GRF")
	}
}
