package main

import (
	"os"

	"horse.fit/tabgraph/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
