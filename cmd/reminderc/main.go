// Command reminderc submits one event to a running reminderd and
// attempts to extract whatever is ready.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/magnusmorton/experiment-umi/apps/reminder"
)

var (
	addr  = flag.String("addr", "127.0.0.1:7332", "address of a running reminderd")
	delay = flag.Duration("delay", 0, "how long until the submitted event becomes ready")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	content := "reminder"
	if args := flag.Args(); len(args) > 0 {
		content = args[0]
	}

	queue, err := reminder.NewRemote(*addr)
	if err != nil {
		glog.Fatalf("reminderc: connecting: %v", err)
	}
	defer queue.Close()

	if _, err := queue.SubmitEvent(content, time.Now().Add(*delay)); err != nil {
		glog.Fatalf("reminderc: SubmitEvent: %v", err)
	}

	e, err := queue.ExtractEvent()
	if err != nil {
		glog.Fatalf("reminderc: ExtractEvent: %v", err)
	}
	if e == nil {
		fmt.Println("nothing ready yet")
		return
	}
	fmt.Printf("ready: %s (was due %s)\n", e.Content, e.ReadyAt.Format(time.RFC3339))
}
