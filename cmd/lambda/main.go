package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"rai-agent/internal/bootstrap"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.Build(ctx, os.Getenv, nil)
	if err != nil {
		slog.Error("failed to start relay", "err", err)
		os.Exit(1)
	}

	lambda.Start(app.Handler.Handle)
}
