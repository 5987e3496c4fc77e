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
Package protocol implements the 48-byte NTPv4 packet and basic functions
to work with. It provides quick and transparent translation between bytes
and a simply accessible struct.
*/
package protocol

import (
	"bytes"
	"encoding/binary"
)

// PacketSizeBytes sets the size of NTP packet
const PacketSizeBytes = 48

// Packet is an NTPv4 packet
/*
http://seriot.ch/ntp.php
https://www.rfc-editor.org/rfc/rfc5905
   0                   1                   2                   3
   0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
0 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |LI | VN  |Mode |    Stratum     |     Poll      |  Precision   |
4 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                         Root Delay                            |
8 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                         Root Dispersion                       |
12+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                          Reference ID                         |
16+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                     Reference Timestamp (64)                  |
24+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                      Origin Timestamp (64)                    |
32+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                      Receive Timestamp (64)                   |
40+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                      Transmit Timestamp (64)                  |
48+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
*/
type Packet struct {
	Settings       uint8  // leap indicator, version number and mode
	Stratum        uint8  // stratum
	Poll           int8   // poll. Power of 2
	Precision      int8   // precision. Power of 2
	RootDelay      uint32 // total delay to the reference clock
	RootDispersion uint32 // total dispersion to the reference clock
	ReferenceID    uint32 // identifier of server or a reference clock
	RefTimeSec     uint32 // last time local clock was updated sec
	RefTimeFrac    uint32 // last time local clock was updated frac
	OrigTimeSec    uint32 // client time sec
	OrigTimeFrac   uint32 // client time frac
	RxTimeSec      uint32 // receive time sec
	RxTimeFrac     uint32 // receive time frac
	TxTimeSec      uint32 // transmit time sec
	TxTimeFrac     uint32 // transmit time frac
}

const (
	liNoWarning      = 0
	liAlarmCondition = 3
	vnClient         = 4
	modeClient       = 3
	modeServer       = 4

	pollInterval = 6
	// log2 clock precision advertised in requests, about 1 microsecond
	clockPrecision = int8(-20)
)

// RequestReferenceID tags outgoing requests in the Reference ID field
var RequestReferenceID = refID('L', 'S', 'C', 0)

func refID(a, b, c, d byte) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

// NewRequest returns a client request packet: LI 0, version 4, client mode,
// stratum 0, poll 6, precision -20 (0xEC), implementation tag in the
// Reference ID field and every other field zero.
func NewRequest() *Packet {
	return &Packet{
		Settings:    liNoWarning<<6 | vnClient<<3 | modeClient,
		Poll:        pollInterval,
		Precision:   clockPrecision,
		ReferenceID: RequestReferenceID,
	}
}

// Leap returns the leap indicator bits
func (p *Packet) Leap() uint8 {
	return p.Settings >> 6
}

// Version returns the NTP version bits
func (p *Packet) Version() uint8 {
	return (p.Settings >> 3) & 0b111
}

// Mode returns the association mode bits
func (p *Packet) Mode() uint8 {
	return p.Settings & 0b111
}

// ValidServerResponse verifies that LI | VN | Mode fields of a reply are
// sane: LI must not be the unsynchronized alarm, version must be 1..4 and
// mode must be server
func (p *Packet) ValidServerResponse() bool {
	if p.Leap() == liAlarmCondition {
		return false
	}
	if p.Version() < 1 || p.Version() > vnClient {
		return false
	}
	return p.Mode() == modeServer
}

// Bytes converts Packet to []bytes
func (p *Packet) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	err := binary.Write(&buf, binary.BigEndian, p)
	return buf.Bytes(), err
}

// BytesToPacket converts []bytes to Packet
func BytesToPacket(ntpPacketBytes []byte) (*Packet, error) {
	packet := &Packet{}
	reader := bytes.NewReader(ntpPacketBytes)
	err := binary.Read(reader, binary.BigEndian, packet)
	return packet, err
}
