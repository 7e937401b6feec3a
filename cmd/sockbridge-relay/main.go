// sockbridge-relay runs the session supervisor: it accepts signaling
// connections, opens a WebRTC transport per client, and forwards each
// logical channel to a real outbound TCP, UDP, or echo driver.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/arlojin/sockbridge/internal/relay"
	"github.com/arlojin/sockbridge/internal/transport"
	"github.com/arlojin/sockbridge/internal/util"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	listen := flag.String("listen", ":0", "signaling HTTP/WS bind address")
	publicURL := flag.String("public-url", "", "externally-visible signaling URL advertised to clients")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		util.EnableDebug()
	}

	host, port, err := transport.NewRelayHost(ctx, *listen, "")
	if err != nil {
		util.LogError("failed to start signaling server: %v", err)
		os.Exit(1)
	}
	defer host.Close()

	advertised := *publicURL
	if advertised == "" {
		advertised = fmt.Sprintf("ws://127.0.0.1:%d/ws", port)
	}

	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════╗")
	fmt.Println("║             sockbridge-relay             ║")
	fmt.Println("╠══════════════════════════════════════════╣")
	fmt.Printf("║  Port  : %-33d ║\n", port)
	fmt.Printf("║  URL   : %-33s ║\n", advertised)
	fmt.Println("╚══════════════════════════════════════════╝")
	fmt.Println()

	util.StartStatsReporter(ctx)
	util.LogSuccess("relay ready, forwarding channels as clients connect")

	relay.NewSupervisor(host).Run(ctx)

	util.LogInfo("relay shut down")
}
