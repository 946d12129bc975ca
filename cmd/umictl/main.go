// Command umictl is a generic debugging client for any UMI endpoint: it
// sends a raw Invoke or Drop without needing a generated stub, and colors
// its output when stdout is a terminal.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/magnusmorton/experiment-umi/id"
	"github.com/magnusmorton/experiment-umi/transport"
	"github.com/magnusmorton/experiment-umi/transport/ws"
	"github.com/magnusmorton/experiment-umi/wire"
	"github.com/mattn/go-isatty"
)

var (
	addr = flag.String("addr", "127.0.0.1:7331", "address of the UMI endpoint (host:port, or ws://host:port/path for the WebSocket leg)")
	op   = flag.String("op", "owned", "invoke op: owned, ref, mut_ref, init")
)

const (
	colorGreen = "\x1b[32m"
	colorRed   = "\x1b[31m"
	colorReset = "\x1b[0m"
)

// send dispatches to the plain-TCP transport or, when addr names a
// "ws://"/"wss://" URL, to transport/ws — the same debug client works
// against either leg of an endpoint without a separate binary.
func send(addr string, msg wire.Message) (wire.Message, error) {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return ws.Send(addr, msg)
	}
	return transport.Send(addr, msg)
}

func colorize(code, s string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return s
	}
	return code + s + colorReset
}

func main() {
	flag.Parse()
	defer glog.Flush()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("usage: umictl [-addr=host:port] [-op=owned|ref|mut_ref|init] invoke <function> [json-arg ...]")
		fmt.Println("       umictl [-addr=host:port] drop <counter>")
		os.Exit(2)
	}

	switch args[0] {
	case "invoke":
		runInvoke(args[1:])
	case "drop":
		runDrop(args[1:])
	default:
		glog.Fatalf("umictl: unknown subcommand %q", args[0])
	}
}

func runInvoke(args []string) {
	if len(args) < 1 {
		glog.Fatalf("umictl: invoke needs a function name")
	}
	function := args[0]
	vars := make([]wire.Variable, 0, len(args)-1)
	for _, raw := range args[1:] {
		vars = append(vars, wire.OwnedLocal(raw))
	}

	reply, err := send(*addr, wire.Invoke(function, vars, wire.InvokeOp(*op)))
	if err != nil {
		fmt.Println(colorize(colorRed, fmt.Sprintf("error: %v", err)))
		os.Exit(1)
	}
	if reply.Result == nil {
		fmt.Println(colorize(colorRed, "error: server did not return a result"))
		os.Exit(1)
	}
	fmt.Println(colorize(colorGreen, fmt.Sprintf("%s: %s", reply.Result.Kind, reply.Result.Encoded)))
}

// runDrop only has the resource's counter to go on, not its timestamp,
// so it can only reach ids minted with a zero timestamp — fine for
// exercising the Drop path against a test fixture, not a real endpoint's
// ids.
func runDrop(args []string) {
	if len(args) != 1 {
		glog.Fatalf("umictl: drop needs exactly one resource counter")
	}
	counter, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		glog.Fatalf("umictl: drop: bad counter %q: %v", args[0], err)
	}
	if _, err := send(*addr, wire.Drop(id.ID{Counter: counter})); err != nil {
		fmt.Println(colorize(colorRed, fmt.Sprintf("error: %v", err)))
		os.Exit(1)
	}
	fmt.Println(colorize(colorGreen, "dropped"))
}
