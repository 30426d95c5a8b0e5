package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/autopeer-io/gcslink/cmd/cpeer-gcs-agent/app"
)

func main() {
	app.NewApp().Run()
}
