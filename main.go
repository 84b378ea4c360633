package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/audiosort/cli"
)

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	if err := cli.Execute(context.Background()); err != nil {
		logrus.WithError(err).Error("audiosort failed")
		os.Exit(1)
	}
}
