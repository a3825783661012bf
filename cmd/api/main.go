package main

import (
	"context"
	"log"

	"github.com/devstore/sales-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("sales api failed: %v", err)
	}
}
