// Command reminderd hosts a reminder queue behind a UMI endpoint and
// blocks until killed.
package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/magnusmorton/experiment-umi/apps/reminder"
	"github.com/magnusmorton/experiment-umi/endpoint"
	"github.com/magnusmorton/experiment-umi/registry"
	"github.com/magnusmorton/experiment-umi/resource"
	"github.com/magnusmorton/experiment-umi/transport/ws"
)

var (
	addr   = flag.String("addr", "127.0.0.1:7332", "address to listen on")
	wsAddr = flag.String("ws-addr", "", "if set, also serve the WebSocket leg at this address under /umi")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	reg := registry.New()
	if err := reminder.Register(reg); err != nil {
		glog.Fatalf("reminderd: registering: %v", err)
	}

	ep := endpoint.New(reg, resource.New())
	if err := ep.Start(*addr); err != nil {
		glog.Fatalf("reminderd: starting endpoint: %v", err)
	}
	glog.Infof("reminderd: listening at %s", ep.Addr())

	if *wsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/umi", ws.Handler(ep.Dispatch))
		go func() {
			glog.Infof("reminderd: serving WebSocket leg at %s/umi", *wsAddr)
			if err := http.ListenAndServe(*wsAddr, mux); err != nil {
				glog.Errorf("reminderd: websocket listener: %v", err)
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	ep.Close()
}
