// Command studentrecordc is a small demonstration of the studentrecord
// proxy against an already-running studentrecordd: it adds the names given
// as arguments and prints the first student.
package main

import (
	"flag"
	"fmt"

	"github.com/golang/glog"
	"github.com/magnusmorton/experiment-umi/apps/studentrecord"
)

var addr = flag.String("addr", "127.0.0.1:7331", "address of a running studentrecordd")

func main() {
	flag.Parse()
	defer glog.Flush()

	roster, err := studentrecord.NewRemote(*addr)
	if err != nil {
		glog.Fatalf("studentrecordc: connecting: %v", err)
	}
	defer roster.Close()

	for _, name := range flag.Args() {
		n, err := roster.AddStudent(name)
		if err != nil {
			glog.Fatalf("studentrecordc: AddStudent(%q): %v", name, err)
		}
		fmt.Printf("added %s (roster size %d)\n", name, n)
	}

	if len(flag.Args()) == 0 {
		fmt.Println("usage: studentrecordc -addr=host:port name [name ...]")
		return
	}

	first, err := roster.FirstStudent()
	if err != nil {
		glog.Fatalf("studentrecordc: FirstStudent: %v", err)
	}
	name, err := first.Value()
	if err != nil {
		glog.Fatalf("studentrecordc: reading first student: %v", err)
	}
	fmt.Printf("first student: %s\n", name)
}
