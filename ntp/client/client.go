/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package client implements a single-shot SNTP exchange over UDP. It sends a
48-byte client request and waits up to a configured timeout for a valid
server reply, returning the raw receive and transmit timestamps. Retry and
scheduling policy belong to the caller.
*/
package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	log "github.com/sirupsen/logrus"

	ntp "github.com/dltoth/systemclock/ntp/protocol"
)

var (
	// ErrChannelSetup means the local UDP endpoint could not be opened
	ErrChannelSetup = errors.New("failed to open udp channel to time server")
	// ErrSend means the request packet could not be written to the network
	ErrSend = errors.New("failed to write request to udp channel")
	// ErrTimeout means no valid reply arrived within the timeout
	ErrTimeout = errors.New("no valid reply from time server within timeout")
)

// Timestamps are the raw server-side timestamps of one exchange: seconds
// and fraction when the request was received (T2) and when the reply was
// transmitted (T3). Seconds are era offsets only; era resolution is the
// caller's job.
type Timestamps struct {
	RxSec  uint32
	RxFrac uint32
	TxSec  uint32
	TxFrac uint32
}

// Exchanger is the exchange surface the offset engine consumes
type Exchanger interface {
	Exchange() (Timestamps, error)
}

// Client performs SNTP exchanges with a single server resolved once at
// construction time
type Client struct {
	cfg  Config
	addr *net.UDPAddr
}

// New validates the config, resolves the server address once and returns a
// ready Client
func New(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	addr, err := cfg.resolveAddr()
	if err != nil {
		return nil, err
	}
	log.Debugf("time server resolved to %s", addr)
	return &Client{cfg: cfg, addr: addr}, nil
}

// Server returns the resolved server address
func (c *Client) Server() *net.UDPAddr {
	return c.addr
}

// Exchange sends one request and waits for the matching reply. On any
// failure the returned Timestamps are all zero and the error wraps one of
// ErrChannelSetup, ErrSend or ErrTimeout. The socket is released on every
// path.
func (c *Client) Exchange() (Timestamps, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		return Timestamps{}, fmt.Errorf("%w: %v", ErrChannelSetup, err)
	}
	defer conn.Close()

	drainStale(conn)

	request, err := ntp.NewRequest().Bytes()
	if err != nil {
		return Timestamps{}, fmt.Errorf("%w: %v", ErrSend, err)
	}
	if _, err := conn.WriteToUDP(request, c.addr); err != nil {
		return Timestamps{}, fmt.Errorf("%w: %v", ErrSend, err)
	}

	deadline := time.Now().Add(c.cfg.Timeout)
	buf := make([]byte, ntp.PacketSizeBytes)
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			return Timestamps{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			return Timestamps{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		if n < ntp.PacketSizeBytes {
			log.Debugf("discarding short datagram of %d bytes from %s", n, addr)
			continue
		}
		response, err := ntp.BytesToPacket(buf[:n])
		if err != nil || !response.ValidServerResponse() {
			log.Debugf("discarding invalid reply from %s", addr)
			continue
		}
		log.Debugf("reply from %s: stratum=%d poll=%d precision=%d refid=%08x",
			addr, response.Stratum, response.Poll, response.Precision, response.ReferenceID)
		return Timestamps{
			RxSec:  response.RxTimeSec,
			RxFrac: response.RxTimeFrac,
			TxSec:  response.TxTimeSec,
			TxFrac: response.TxTimeFrac,
		}, nil
	}
}

// drainStale discards datagrams already pending on the socket so a late
// reply from a previous attempt cannot be mistaken for the current one
func drainStale(conn *net.UDPConn) {
	buf := make([]byte, ntp.PacketSizeBytes)
	for {
		if err := conn.SetReadDeadline(time.Now()); err != nil {
			return
		}
		if _, _, err := conn.ReadFromUDP(buf); err != nil {
			return
		}
	}
}
