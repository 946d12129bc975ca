// Package transport implements the UMI wire transport: one TCP connection
// per call, used for exactly one request and one response, then closed
// (spec.md §4.D).
package transport

import (
	"bufio"
	"errors"
	"fmt"
	"net"

	"github.com/golang/glog"
	"github.com/magnusmorton/experiment-umi/wire"
	"github.com/pborman/uuid"
)

// Transport error kinds, surfaced to the caller of Send as typed errors
// per spec.md §7.
var (
	ErrConnectFailed = errors.New("transport: connect failed")
	ErrWriteFailed   = errors.New("transport: write failed")
	ErrReadFailed    = errors.New("transport: read failed")
)

// Send dials addr, writes msg as a single line, and blocks until the
// reply line arrives. It always closes the connection before returning,
// whatever the outcome. A Drop message is sent the same way as any other
// message: the caller must still read the reply line to let the server
// finish cleanup, even if it intends to discard the body.
func Send(addr string, msg wire.Message) (wire.Message, error) {
	callID := uuid.NewRandom()
	glog.V(2).Infof("transport: call %s dialing %s (%s)", callID, addr, msg.Kind)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return wire.Message{}, fmt.Errorf("%w: dialing %s: %v", ErrConnectFailed, addr, err)
	}
	defer conn.Close()

	if err := wire.WriteMessage(conn, msg); err != nil {
		return wire.Message{}, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	reply, err := wire.ReadMessage(bufio.NewReader(conn))
	if err != nil {
		return wire.Message{}, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	glog.V(2).Infof("transport: call %s got reply kind %s", callID, reply.Kind)
	return reply, nil
}
