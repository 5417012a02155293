// Package terminal implements the binary TCP protocol spoken by ZKTeco-style
// fingerprint attendance terminals.
package terminal

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Protocol command codes.
const (
	cmdConnect       uint16 = 1000
	cmdExit          uint16 = 1001
	cmdEnableDevice  uint16 = 1002
	cmdDisableDevice uint16 = 1003
	cmdAuth          uint16 = 1102
	cmdPrepareData   uint16 = 1500
	cmdData          uint16 = 1501
	cmdFreeData      uint16 = 1502
	cmdDataWRRQ      uint16 = 1503
	cmdGetTime       uint16 = 201

	replyAckOK     uint16 = 2000
	replyAckError  uint16 = 2001
	replyAckData   uint16 = 2002
	replyAckUnauth uint16 = 1005
)

// Every TCP frame starts with this magic, followed by a little-endian u32
// payload length.
var tcpMagic = []byte{0x50, 0x50, 0x82, 0x7d}

const payloadHeaderSize = 8 // cmd + checksum + session + reply, u16 each

// Bulk-transfer request parameters for cmdDataWRRQ. The second byte selects
// the dataset (0x0d attendance log, 0x05 user table).
var (
	reqAttendanceLog = []byte{0x01, 0x0d, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	reqUserTable     = []byte{0x01, 0x05, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
)

// packet is one decoded protocol payload.
type packet struct {
	cmd       uint16
	sessionID uint16
	replyID   uint16
	data      []byte
}

// encodePayload builds the command payload including its checksum.
func encodePayload(cmd, sessionID, replyID uint16, data []byte) []byte {
	buf := make([]byte, payloadHeaderSize+len(data))
	binary.LittleEndian.PutUint16(buf[0:2], cmd)
	binary.LittleEndian.PutUint16(buf[4:6], sessionID)
	binary.LittleEndian.PutUint16(buf[6:8], replyID)
	copy(buf[payloadHeaderSize:], data)
	binary.LittleEndian.PutUint16(buf[2:4], checksum(buf))
	return buf
}

// encodeFrame wraps a payload in the TCP magic + length header.
func encodeFrame(payload []byte) []byte {
	frame := make([]byte, len(tcpMagic)+4+len(payload))
	copy(frame, tcpMagic)
	binary.LittleEndian.PutUint32(frame[4:8], uint32(len(payload)))
	copy(frame[8:], payload)
	return frame
}

// decodePayload parses a raw payload into a packet.
func decodePayload(payload []byte) (*packet, error) {
	if len(payload) < payloadHeaderSize {
		return nil, fmt.Errorf("short payload: %d bytes", len(payload))
	}
	return &packet{
		cmd:       binary.LittleEndian.Uint16(payload[0:2]),
		sessionID: binary.LittleEndian.Uint16(payload[4:6]),
		replyID:   binary.LittleEndian.Uint16(payload[6:8]),
		data:      payload[payloadHeaderSize:],
	}, nil
}

// checksum computes the ones'-complement 16-bit sum over the payload with the
// checksum field treated as zero.
func checksum(payload []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(payload); i += 2 {
		if i == 2 {
			continue // checksum field itself
		}
		sum += uint32(binary.LittleEndian.Uint16(payload[i : i+2]))
	}
	if len(payload)%2 == 1 {
		sum += uint32(payload[len(payload)-1])
	}
	for sum > 0xffff {
		sum = (sum >> 16) + (sum & 0xffff)
	}
	return uint16(^sum) & 0xffff
}

// decodeTime unpacks the device's packed timestamp encoding. The device clock
// has no zone; the value is wall-clock time, kept in UTC so day boundaries
// match the terminal's own calendar.
func decodeTime(v uint32) time.Time {
	t := v
	second := int(t % 60)
	t /= 60
	minute := int(t % 60)
	t /= 60
	hour := int(t % 24)
	t /= 24
	day := int(t%31) + 1
	t /= 31
	month := int(t%12) + 1
	t /= 12
	year := int(t) + 2000

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}

// encodeTime is the inverse of decodeTime.
func encodeTime(t time.Time) uint32 {
	t = t.UTC()
	v := uint32(t.Year() - 2000)
	v = v*12 + uint32(t.Month()-1)
	v = v*31 + uint32(t.Day()-1)
	v = v*24 + uint32(t.Hour())
	v = v*60 + uint32(t.Minute())
	v = v*60 + uint32(t.Second())
	return v
}

// makeCommKey derives the 4-byte auth token from the configured comm key and
// the session id handed out by the device.
func makeCommKey(key int, sessionID uint16, ticks byte) []byte {
	var k uint32
	for i := 0; i < 32; i++ {
		if key&(1<<uint(i)) != 0 {
			k = k<<1 | 1
		} else {
			k <<= 1
		}
	}
	k += uint32(sessionID)

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, k)
	buf[0] ^= 'Z'
	buf[1] ^= 'K'
	buf[2] ^= 'S'
	buf[3] ^= 'O'

	// Swap the two u16 halves.
	buf[0], buf[1], buf[2], buf[3] = buf[2], buf[3], buf[0], buf[1]

	buf[0] ^= ticks
	buf[1] ^= ticks
	buf[2] = ticks
	buf[3] ^= ticks

	return buf
}
