// GoCube frame dump - prints every notification from a GoCube with the ops
// it decodes to.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/SeamusWaldron/cuberender/internal/ble"
	"github.com/SeamusWaldron/cuberender/internal/gocube"
	"github.com/SeamusWaldron/cuberender/pkg/types"
)

func main() {
	fmt.Println("GoCube Frame Dump")
	fmt.Println("=================")
	fmt.Println()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	client, err := ble.NewClient(logger)
	if err != nil {
		fmt.Printf("Failed to enable adapter: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Scanning for GoCube...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	results, err := client.Scan(ctx, 10*time.Second)
	cancel()
	if err != nil {
		fmt.Printf("Scan failed: %v\n", err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Println("GoCube not found")
		os.Exit(1)
	}
	fmt.Printf("Found: %s (%s)\n", results[0].Name, results[0].UUID)
	fmt.Println()

	feed := &gocube.Feed{
		OnOps: func(ops []types.Op) {
			fmt.Printf("      Ops: %s\n", types.FormatOps(ops))
		},
		OnOrientation: func(q mgl32.Quat) {
			fmt.Printf("      Orientation: w=%.3f x=%.3f y=%.3f z=%.3f\n", q.W, q.V[0], q.V[1], q.V[2])
		},
		OnBattery: func(level int) {
			fmt.Printf("      Battery: %d%%\n", level)
		},
		Logger: logger,
	}
	client.SetMessageCallback(func(msg *gocube.Message) {
		fmt.Printf("[%s] type 0x%02X (%s) payload %s\n",
			time.Now().Format("15:04:05.000"), msg.Type, gocube.MessageTypeName(msg.Type), hex.EncodeToString(msg.Payload))
		feed.Handle(msg)
	})

	fmt.Println("Connecting...")
	ctx, cancel = context.WithTimeout(context.Background(), ble.ConnectTimeout)
	err = client.ConnectToResult(ctx, results[0])
	cancel()
	if err != nil {
		fmt.Printf("Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer client.Disconnect()
	fmt.Println("Connected!")
	fmt.Println()

	if len(os.Args) > 1 && os.Args[1] == "-orientation" {
		if err := client.EnableOrientation(); err != nil {
			fmt.Printf("Failed to enable orientation: %v\n", err)
		}
	}

	fmt.Println("Rotate the cube to see data...")
	fmt.Println("Press Ctrl+C to exit")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	fmt.Println("\nDisconnecting...")
}
