package main

import (
	"github.com/humanbelnik/singalong/core/internal/app"
	"github.com/humanbelnik/singalong/core/internal/config"
)

func main() {
	app.Go(config.Load())
}
