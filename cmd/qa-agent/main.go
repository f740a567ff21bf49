package main

import (
	"qa-agent/internal/bootstrap"
)

func main() {
	bootstrap.NewApp().Run()
}
