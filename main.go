package main

import (
	"math/rand"
	"time"

	"github.com/danielwestendorf/faktory-client/cmd"
)

func main() {
	rand.Seed(time.Now().UnixNano())

	cmd.Execute()
}
