// cuberender - animated Rubik's cube driven by face-turn operations.
package main

import (
	"github.com/SeamusWaldron/cuberender/internal/cli"
)

func main() {
	cli.Execute()
}
