// mockplane runs a stand-in X-Plane Connect plugin endpoint for local
// testing: it accepts client messages and answers GETD requests from a
// seeded dataref table.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"xpcgo/pkg/sim/mockplane"
)

var (
	addr = flag.String("addr", "127.0.0.1:49009", "UDP address to listen on")
	lat  = flag.Float64("lat", 51.6845, "Seeded aircraft latitude")
	lon  = flag.Float64("lon", 14.4234, "Seeded aircraft longitude")
	alt  = flag.Float64("alt", 285.0, "Seeded aircraft elevation (m)")
)

func main() {
	flag.Parse()

	srv, err := mockplane.NewServer(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start mock plugin: %v\n", err)
		os.Exit(1)
	}
	defer srv.Close()

	srv.SetDataref("sim/flightmodel/position/latitude", float32(*lat))
	srv.SetDataref("sim/flightmodel/position/longitude", float32(*lon))
	srv.SetDataref("sim/flightmodel/position/elevation", float32(*alt))

	slog.Info("Mock plugin listening", "addr", srv.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("Shutting down")
}
