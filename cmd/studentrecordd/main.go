// Command studentrecordd hosts a studentrecord registry behind a UMI
// endpoint and blocks until killed.
package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/magnusmorton/experiment-umi/apps/studentrecord"
	"github.com/magnusmorton/experiment-umi/endpoint"
	"github.com/magnusmorton/experiment-umi/registry"
	"github.com/magnusmorton/experiment-umi/resource"
	"github.com/magnusmorton/experiment-umi/transport/ws"
)

var (
	addr   = flag.String("addr", "127.0.0.1:7331", "address to listen on")
	wsAddr = flag.String("ws-addr", "", "if set, also serve the WebSocket leg at this address under /umi")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	reg := registry.New()
	if err := studentrecord.Register(reg); err != nil {
		glog.Fatalf("studentrecordd: registering: %v", err)
	}

	ep := endpoint.New(reg, resource.New())
	if err := ep.Start(*addr); err != nil {
		glog.Fatalf("studentrecordd: starting endpoint: %v", err)
	}
	glog.Infof("studentrecordd: listening at %s", ep.Addr())

	if *wsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/umi", ws.Handler(ep.Dispatch))
		go func() {
			glog.Infof("studentrecordd: serving WebSocket leg at %s/umi", *wsAddr)
			if err := http.ListenAndServe(*wsAddr, mux); err != nil {
				glog.Errorf("studentrecordd: websocket listener: %v", err)
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	ep.Close()
}
