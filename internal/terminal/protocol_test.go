package terminal

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

func TestEncodePayloadRoundtrip(t *testing.T) {
	data := []byte{0x01, 0x0d, 0x00, 0xff}
	payload := encodePayload(cmdDataWRRQ, 0x1234, 7, data)

	pkt, err := decodePayload(payload)
	if err != nil {
		t.Fatalf("decodePayload failed: %v", err)
	}

	if pkt.cmd != cmdDataWRRQ {
		t.Errorf("cmd = %d, want %d", pkt.cmd, cmdDataWRRQ)
	}
	if pkt.sessionID != 0x1234 {
		t.Errorf("sessionID = %#x, want 0x1234", pkt.sessionID)
	}
	if pkt.replyID != 7 {
		t.Errorf("replyID = %d, want 7", pkt.replyID)
	}
	if !bytes.Equal(pkt.data, data) {
		t.Errorf("data = %v, want %v", pkt.data, data)
	}
}

func TestDecodePayloadShort(t *testing.T) {
	if _, err := decodePayload([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Error("expected error for short payload")
	}
}

func TestChecksumVerifies(t *testing.T) {
	// A payload with a correct checksum sums to 0xffff when the stored
	// checksum is added back in.
	for _, data := range [][]byte{nil, {0x01}, {0x01, 0x0d, 0x00}, reqAttendanceLog} {
		payload := encodePayload(cmdConnect, 0, 0, data)

		var sum uint32
		for i := 0; i+1 < len(payload); i += 2 {
			sum += uint32(binary.LittleEndian.Uint16(payload[i : i+2]))
		}
		if len(payload)%2 == 1 {
			sum += uint32(payload[len(payload)-1])
		}
		for sum > 0xffff {
			sum = (sum >> 16) + (sum & 0xffff)
		}

		if uint16(sum) != 0xffff {
			t.Errorf("payload with %d data bytes does not verify: sum = %#x", len(data), sum)
		}
	}
}

func TestEncodeFrame(t *testing.T) {
	payload := encodePayload(cmdConnect, 0, 0, nil)
	frame := encodeFrame(payload)

	if !bytes.Equal(frame[:4], tcpMagic) {
		t.Errorf("frame magic = %v, want %v", frame[:4], tcpMagic)
	}
	if got := binary.LittleEndian.Uint32(frame[4:8]); got != uint32(len(payload)) {
		t.Errorf("frame length = %d, want %d", got, len(payload))
	}
	if !bytes.Equal(frame[8:], payload) {
		t.Error("frame body does not match payload")
	}
}

func TestTimeCodecRoundtrip(t *testing.T) {
	times := []time.Time{
		time.Date(2025, 3, 1, 7, 58, 0, 0, time.UTC),
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 12, 31, 23, 59, 59, 0, time.UTC),
	}

	for _, want := range times {
		got := decodeTime(encodeTime(want))
		if !got.Equal(want) {
			t.Errorf("roundtrip of %v = %v", want, got)
		}
	}
}

func TestDecodeTimeKnownValue(t *testing.T) {
	// Zero decodes to the epoch of the packed encoding.
	got := decodeTime(0)
	want := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("decodeTime(0) = %v, want %v", got, want)
	}
}

func TestMakeCommKey(t *testing.T) {
	a := makeCommKey(123456, 0x2a1b, 50)
	b := makeCommKey(123456, 0x2a1b, 50)

	if len(a) != 4 {
		t.Fatalf("token length = %d, want 4", len(a))
	}
	if !bytes.Equal(a, b) {
		t.Error("token is not deterministic")
	}
	if a[2] != 50 {
		t.Errorf("token[2] = %d, want ticks byte 50", a[2])
	}

	// Different sessions must yield different tokens.
	c := makeCommKey(123456, 0x2a1c, 50)
	if bytes.Equal(a, c) {
		t.Error("token does not depend on session id")
	}
}
