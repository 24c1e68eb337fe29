package main

import (
	"os"

	"github.com/newstrnt/admin-authz/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
