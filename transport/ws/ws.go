// Package ws binds the same UMI Invoke/Return/Drop line protocol (spec.md
// §4.C) onto a WebSocket connection instead of plain TCP, for browser-
// hosted debug clients. It mirrors the teacher's own split between a
// plain-TCP protocol and a WebSocket one
// (runtimes/google/ipc/protocols/{tcp,ws,wsh}): the wire format and the
// one-request-one-response-then-close discipline of transport.Send are
// unchanged, only the framing under the hood differs.
package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
	"github.com/magnusmorton/experiment-umi/wire"
)

var (
	ErrConnectFailed = errors.New("ws: connect failed")
	ErrWriteFailed   = errors.New("ws: write failed")
	ErrReadFailed    = errors.New("ws: read failed")
)

var dialer = websocket.Dialer{}

// Send dials the WebSocket URL url (e.g. "ws://127.0.0.1:3334/umi"),
// writes msg as a single text frame, and blocks for exactly one reply
// frame before closing the connection. Semantically identical to
// transport.Send: one call, one connection.
func Send(url string, msg wire.Message) (wire.Message, error) {
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return wire.Message{}, fmt.Errorf("%w: dialing %s: %v", ErrConnectFailed, url, err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(msg); err != nil {
		return wire.Message{}, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	var reply wire.Message
	if err := conn.ReadJSON(&reply); err != nil {
		return wire.Message{}, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return reply, nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler upgrades incoming HTTP connections to WebSocket and hands each
// accepted Invoke/Drop message to dispatch, writing whatever Message it
// returns back as the single reply frame. It is meant to be mounted
// alongside the endpoint's TCP listener so the same dispatcher serves
// both transports.
func Handler(dispatch func(wire.Message) wire.Message) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			glog.Warningf("ws: upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		if err != nil {
			glog.Warningf("ws: read failed: %v", err)
			return
		}
		var msg wire.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			glog.Warningf("ws: malformed message: %v", err)
			return
		}
		reply := dispatch(msg)
		if err := conn.WriteJSON(reply); err != nil {
			glog.Warningf("ws: write failed: %v", err)
		}
	}
}
