// Command mcinfo reports the available microcompute drivers and the
// capabilities of the device a context would open.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"

	"github.com/gogpu/microcompute"
	"github.com/gogpu/microcompute/driver"

	_ "github.com/gogpu/microcompute/driver/native"
	_ "github.com/gogpu/microcompute/driver/rust"
)

func main() {
	var (
		device  = flag.String("device", "", "device selector (empty/auto, index, or name substring)")
		drvName = flag.String("driver", "", "driver to open (default: registry priority)")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		microcompute.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	names := driver.Available()
	sort.Strings(names)
	fmt.Println("registered drivers:")
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}

	var opts []microcompute.ContextOption
	if *drvName != "" {
		d := driver.Get(*drvName)
		if d == nil {
			log.Fatalf("driver %q is not available", *drvName)
		}
		opts = append(opts, microcompute.WithDriver(d))
	}
	opts = append(opts, microcompute.WithDebugCallback(microcompute.DefaultDebugCallback, nil))

	ctx, err := microcompute.NewContext(*device, opts...)
	if err != nil {
		log.Fatalf("open device: %v", err)
	}
	defer ctx.Release()

	caps := ctx.Capabilities()
	fmt.Printf("driver: %s\n", ctx.DriverName())
	fmt.Printf("compute: %v\n", caps.Compute)
	fmt.Printf("max workgroup size: %dx%dx%d\n",
		caps.MaxWorkgroup[0], caps.MaxWorkgroup[1], caps.MaxWorkgroup[2])
	fmt.Printf("max workgroups per dimension: %d\n", caps.MaxWorkgroupsPerDimension)
	fmt.Printf("max buffer size: %d bytes\n", caps.MaxBufferSize)
}
