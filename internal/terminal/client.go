package terminal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/user/fingerpulse/internal/model"
)

// Error categories. Connect failures mean the device never answered the
// protocol handshake; protocol errors mean it answered with something
// unusable.
var (
	ErrConnect  = errors.New("terminal: connection failed")
	ErrProtocol = errors.New("terminal: protocol error")
)

// Options configures a terminal session.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	CommKey        int
}

// Client is an open session to one terminal. Not safe for concurrent use;
// the device itself serializes commands per connection.
type Client struct {
	conn        net.Conn
	addr        string
	sessionID   uint16
	replyID     uint16
	readTimeout time.Duration
	closed      bool
}

// Dial opens a session: TCP connect, protocol handshake and, when the device
// demands it, the comm-key auth exchange.
func Dial(host string, port int, opts Options) (*Client, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.DialTimeout("tcp", addr, opts.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnect, addr, err)
	}

	c := &Client{
		conn:        conn,
		addr:        addr,
		readTimeout: opts.ReadTimeout,
	}

	reply, err := c.roundTrip(cmdConnect, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: handshake with %s: %v", ErrConnect, addr, err)
	}

	// The connect reply carries the session id for everything that follows.
	c.sessionID = reply.sessionID

	if reply.cmd == replyAckUnauth {
		auth := makeCommKey(opts.CommKey, c.sessionID, 50)
		reply, err = c.roundTrip(cmdAuth, auth)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: auth with %s: %v", ErrConnect, addr, err)
		}
	}

	if reply.cmd != replyAckOK {
		conn.Close()
		return nil, fmt.Errorf("%w: %s rejected session (cmd %d)", ErrConnect, addr, reply.cmd)
	}

	return c, nil
}

// Addr returns the remote address of the session.
func (c *Client) Addr() string {
	return c.addr
}

// Attendances pulls the raw punch log from the device. The result is the
// decoded record slice typed as interface{} so callers can apply the same
// shape tolerance they apply to pushed payloads.
func (c *Client) Attendances() (interface{}, error) {
	data, err := c.readWithBuffer(reqAttendanceLog)
	if err != nil {
		return nil, err
	}
	return parseAttendanceRecords(data), nil
}

// Clock reads the device wall-clock time.
func (c *Client) Clock() (time.Time, error) {
	reply, err := c.roundTrip(cmdGetTime, nil)
	if err != nil {
		return time.Time{}, err
	}
	if reply.cmd != replyAckOK || len(reply.data) < 4 {
		return time.Time{}, fmt.Errorf("%w: bad clock reply from %s (cmd %d)", ErrProtocol, c.addr, reply.cmd)
	}
	return decodeTime(binary.LittleEndian.Uint32(reply.data[0:4])), nil
}

// Users lists the users enrolled on the device.
func (c *Client) Users() ([]model.TerminalUser, error) {
	data, err := c.readWithBuffer(reqUserTable)
	if err != nil {
		return nil, err
	}
	return parseUserRecords(data), nil
}

// Close terminates the session. Safe to call more than once; the socket is
// always released even when the exit command cannot be delivered.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	// Best effort goodbye so the device frees the session slot.
	if payload := encodePayload(cmdExit, c.sessionID, c.nextReplyID(), nil); payload != nil {
		c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		c.conn.Write(encodeFrame(payload))
	}

	return c.conn.Close()
}

func (c *Client) nextReplyID() uint16 {
	c.replyID++
	return c.replyID
}

// roundTrip sends one command and reads one reply frame.
func (c *Client) roundTrip(cmd uint16, data []byte) (*packet, error) {
	payload := encodePayload(cmd, c.sessionID, c.nextReplyID(), data)

	c.conn.SetWriteDeadline(time.Now().Add(c.readTimeout))
	if _, err := c.conn.Write(encodeFrame(payload)); err != nil {
		return nil, fmt.Errorf("%w: write to %s: %v", ErrProtocol, c.addr, err)
	}

	return c.readPacket()
}

// readPacket reads one framed protocol packet.
func (c *Client) readPacket() (*packet, error) {
	c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))

	header := make([]byte, 8)
	if _, err := io.ReadFull(c.conn, header); err != nil {
		return nil, fmt.Errorf("%w: read header from %s: %v", ErrProtocol, c.addr, err)
	}

	for i, b := range tcpMagic {
		if header[i] != b {
			return nil, fmt.Errorf("%w: bad frame magic from %s", ErrProtocol, c.addr)
		}
	}

	size := binary.LittleEndian.Uint32(header[4:8])
	if size < payloadHeaderSize || size > 4*1024*1024 {
		return nil, fmt.Errorf("%w: implausible frame size %d from %s", ErrProtocol, size, c.addr)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(c.conn, payload); err != nil {
		return nil, fmt.Errorf("%w: read payload from %s: %v", ErrProtocol, c.addr, err)
	}

	pkt, err := decodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return pkt, nil
}

// readWithBuffer requests a bulk dataset. Small datasets come back inline in
// a single data packet; large ones are streamed in chunks after a
// prepare-data announcement carrying the total size.
func (c *Client) readWithBuffer(param []byte) ([]byte, error) {
	reply, err := c.roundTrip(cmdDataWRRQ, param)
	if err != nil {
		return nil, err
	}

	switch reply.cmd {
	case cmdData, replyAckData:
		return reply.data, nil

	case cmdPrepareData, replyAckOK:
		if len(reply.data) < 5 {
			// Nothing stored on the device yet.
			return nil, nil
		}
		total := int(binary.LittleEndian.Uint32(reply.data[1:5]))
		return c.readChunked(total)

	case replyAckError:
		return nil, fmt.Errorf("%w: device %s refused data request", ErrProtocol, c.addr)

	default:
		return nil, fmt.Errorf("%w: unexpected reply %d from %s", ErrProtocol, reply.cmd, c.addr)
	}
}

// readChunked assembles a streamed dataset of the announced total size.
func (c *Client) readChunked(total int) ([]byte, error) {
	buf := make([]byte, 0, total)

	for len(buf) < total {
		pkt, err := c.readPacket()
		if err != nil {
			return nil, err
		}

		switch pkt.cmd {
		case cmdPrepareData:
			// Size announcement repeated before the first chunk.
			continue
		case cmdData:
			buf = append(buf, pkt.data...)
		case replyAckOK:
			// Device finished early; take what arrived.
			c.freeData()
			return buf, nil
		default:
			return nil, fmt.Errorf("%w: unexpected chunk cmd %d from %s", ErrProtocol, pkt.cmd, c.addr)
		}
	}

	c.freeData()
	return buf, nil
}

// freeData tells the device to release its transfer buffer.
func (c *Client) freeData() {
	payload := encodePayload(cmdFreeData, c.sessionID, c.nextReplyID(), nil)
	c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	c.conn.Write(encodeFrame(payload))

	// The ack is advisory; a slow device must not stall the sync.
	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	header := make([]byte, 8)
	if _, err := io.ReadFull(c.conn, header); err == nil {
		size := binary.LittleEndian.Uint32(header[4:8])
		if size > 0 && size <= 1024 {
			io.CopyN(io.Discard, c.conn, int64(size))
		}
	}
}
