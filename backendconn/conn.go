package backendconn

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"

	"github.com/innerpeacez/sharding-sphere/auth"
	"github.com/innerpeacez/sharding-sphere/metrics"
	"github.com/innerpeacez/sharding-sphere/registry"
	"github.com/innerpeacez/sharding-sphere/resultset"
	"github.com/innerpeacez/sharding-sphere/wire"
)

// Credentials carries the username/password/schema a Conn authenticates
// with during the handshake (HandshakeResponse41).
type Credentials struct {
	Username string
	Password string
	Schema   string
}

// Conn drives one physical backend connection's read path on a single I/O
// goroutine: all reads are processed in arrival order, so the response
// state machine and the assembler require no internal locking.
type Conn struct {
	netConn net.Conn
	fr      *wire.FrameReader
	fw      *wire.FrameWriter

	channel  string
	creds    Credentials
	channels *registry.ChannelRegistry
	futures  *registry.FutureRegistry

	phase  Phase
	connID registry.ConnectionID

	// assembler is the in-progress result for the current command, or nil
	// between commands.
	assembler *resultset.QueryResult
}

// New wraps an already-dialed net.Conn. channel is the local transport
// identity used to key the channel registry; it must be unique per Conn
// within the registries' lifetime.
func New(netConn net.Conn, channel string, creds Credentials, channels *registry.ChannelRegistry, futures *registry.FutureRegistry) *Conn {
	return &Conn{
		netConn:  netConn,
		fr:       wire.NewFrameReader(netConn, true),
		fw:       wire.NewFrameWriter(netConn),
		channel:  channel,
		creds:    creds,
		channels: channels,
		futures:  futures,
		phase:    Handshaking,
	}
}

// ConnectionID returns the backend-assigned id recorded at handshake
// completion. Valid only once the connection has left Handshaking.
func (c *Conn) ConnectionID() registry.ConnectionID { return c.connID }

// Phase returns the connection's current lifecycle phase.
func (c *Conn) Phase() Phase { return c.phase }

// Run processes inbound frames until the connection fails or is closed.
// It is event-driven and never blocks waiting on a caller; it only
// blocks on the network read.
func (c *Conn) Run() error {
	for {
		if err := c.readOne(); err != nil {
			c.failInFlight(err)
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

func (c *Conn) readOne() error {
	frame, err := c.fr.ReadFrame()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return &ProtocolError{Op: "read frame", Err: err}
	}
	return c.dispatch(frame.Payload)
}

// dispatch routes an inbound payload by the connection's current phase.
func (c *Conn) dispatch(payload []byte) error {
	switch c.phase {
	case Handshaking:
		return c.handleHandshake(payload)
	case Authenticating:
		return c.handleAuthResponse(payload)
	case Command:
		return c.handleCommandPacket(payload)
	default:
		return &ProtocolError{Op: "dispatch", Err: fmt.Errorf("unknown phase %v", c.phase)}
	}
}

func (c *Conn) handleHandshake(payload []byte) error {
	greeting, err := wire.DecodeHandshakeV10(payload)
	if err != nil {
		return &ProtocolError{Op: "decode handshake", Err: err}
	}

	if !auth.Available() {
		return &CryptoError{Err: errors.New("SHA-1 not available")}
	}
	scramble := auth.NativePassword([]byte(c.creds.Password), greeting.AuthPluginData)
	response := wire.EncodeHandshakeResponse41(wire.DefaultClientCapabilities, c.creds.Username, scramble, c.creds.Schema)
	// The sequence counter is one shared, per-connection value that
	// alternates between reader and writer; hand off the position fr left
	// at before writing, then hand the advanced position back.
	c.fw.SetSequence(c.fr.NextSeq())
	if err := c.fw.WriteFrame(response); err != nil {
		return &ProtocolError{Op: "write handshake response", Err: err}
	}
	c.fr.SetSequence(c.fw.NextSeq())

	c.connID = registry.ConnectionID(greeting.ConnectionID)
	c.channels.Put(c.channel, c.connID)
	c.phase = Authenticating
	metrics.BackendConnectionsTotal.WithLabelValues(c.channel).Inc()
	return nil
}

func (c *Conn) handleAuthResponse(payload []byte) error {
	header, ok := wire.NewReader(payload).PeekHeader()
	if !ok {
		return &ProtocolError{Op: "peek auth response header", Err: io.ErrUnexpectedEOF}
	}

	switch header {
	case wire.HeaderOK:
		c.phase = Command
		result := resultset.New()
		if err := result.FeedGeneric(resultset.GenericResponse{}); err != nil {
			return &ProtocolError{Op: "feed auth ok", Err: err}
		}
		c.resolveFuture(result, nil)
		return nil
	case wire.HeaderERR:
		gr, err := decodeErrPacket(payload)
		if err != nil {
			return &ProtocolError{Op: "decode auth err", Err: err}
		}
		authErr := &AuthError{Code: gr.ErrorCode, SQLState: gr.SQLState, Message: gr.Message}
		metrics.AuthFailuresTotal.WithLabelValues(c.channel).Inc()
		c.resolveFuture(nil, authErr)
		return authErr
	default:
		return &ProtocolError{Op: "auth response", Err: fmt.Errorf("unexpected header 0x%02x", header)}
	}
}

func (c *Conn) handleCommandPacket(payload []byte) error {
	r := wire.NewReader(payload)
	header, ok := r.PeekHeader()
	if !ok {
		return &ProtocolError{Op: "peek command header", Err: io.ErrUnexpectedEOF}
	}

	switch header {
	case wire.HeaderERR:
		gr, err := decodeErrPacket(payload)
		if err != nil {
			return &ProtocolError{Op: "decode err packet", Err: err}
		}
		result := resultset.New()
		result.FeedGeneric(*gr)
		c.assembler = nil
		c.resolveFuture(result, nil)
		return nil

	case wire.HeaderOK:
		gr, err := decodeOKPacket(payload)
		if err != nil {
			return &ProtocolError{Op: "decode ok packet", Err: err}
		}
		result := resultset.New()
		result.FeedGeneric(*gr)
		c.assembler = nil
		c.resolveFuture(result, nil)
		return nil

	case wire.HeaderEOF:
		return c.handleEOF()

	default:
		return c.handleColumnOrRow(payload)
	}
}

func (c *Conn) handleEOF() error {
	if c.assembler == nil {
		return &ProtocolError{Op: "eof", Err: fmt.Errorf("eof with no open result")}
	}
	switch c.assembler.Phase() {
	case resultset.Columns:
		if err := c.assembler.FeedColumnsEOF(); err != nil {
			return &ProtocolError{Op: "columns eof", Err: err}
		}
		// The full result buffers in memory; the future is not resolved
		// here, only once the row stream terminates below.
		return nil
	case resultset.Rows:
		if err := c.assembler.FeedRowsEOF(); err != nil {
			return &ProtocolError{Op: "rows eof", Err: err}
		}
		result := c.assembler
		c.assembler = nil
		c.resolveFuture(result, nil)
		return nil
	default:
		return &ProtocolError{Op: "eof", Err: fmt.Errorf("unexpected eof in phase %v", c.assembler.Phase())}
	}
}

func (c *Conn) handleColumnOrRow(payload []byte) error {
	if c.assembler == nil {
		n, _, err := wire.NewReader(payload).LengthEncodedInt()
		if err != nil {
			return &ProtocolError{Op: "column count", Err: err}
		}
		c.assembler = resultset.New()
		if err := c.assembler.FeedColumnCount(int(n)); err != nil {
			return &ProtocolError{Op: "feed column count", Err: err}
		}
		return nil
	}

	if c.assembler.NeedColumnDefinition() {
		def, err := decodeColumnDefinition(payload)
		if err != nil {
			return &ProtocolError{Op: "decode column definition", Err: err}
		}
		if err := c.assembler.FeedColumnDefinition(*def); err != nil {
			return &ProtocolError{Op: "feed column definition", Err: err}
		}
		return nil
	}

	row, err := decodeTextRow(payload, c.assembler.ColumnCount)
	if err != nil {
		return &ProtocolError{Op: "decode row", Err: err}
	}
	if err := c.assembler.FeedRow(row); err != nil {
		return &ProtocolError{Op: "feed row", Err: err}
	}
	return nil
}

// SendCommand writes payload as a new command packet. The sequence counter
// is a single value shared by both directions and restarts at 0 only when
// the client initiates a new command (glossary: "sequence id... reset at
// each command boundary"); the backend's response frames then continue
// from the position this write leaves the counter at.
func (c *Conn) SendCommand(payload []byte) error {
	c.fw.ResetSequence()
	// Hand the reader the position the write will leave the counter at
	// before any byte goes out: Run's goroutine may read the response as
	// soon as the peer has the command. WriteFrame takes one sequence id
	// per MaxPayloadLength chunk, and at least one.
	frames := (len(payload) + wire.MaxPayloadLength - 1) / wire.MaxPayloadLength
	if frames == 0 {
		frames = 1
	}
	c.fr.SetSequence(byte(frames))
	if err := c.fw.WriteFrame(payload); err != nil {
		return &ProtocolError{Op: "send command", Err: err}
	}
	return nil
}

// Execute sends payload as a command and blocks until the response state
// machine resolves it, giving callers a synchronous request/response entry
// point instead of managing a ResponseFuture by hand. A COMMAND-phase ERR
// still resolves successfully at the future level (the connection is not
// invalidated, per SqlError's contract), but Execute converts it to a
// *SqlError here so the caller does not have to inspect
// result.Generic.IsError itself.
func (c *Conn) Execute(payload []byte) (*resultset.QueryResult, error) {
	future := registry.NewResponseFuture()
	c.futures.Put(c.connID, future)
	if err := c.SendCommand(payload); err != nil {
		c.futures.Clear(c.connID)
		return nil, err
	}
	result, err := future.Get()
	if err != nil {
		return nil, err
	}
	if sqlErr := SqlErrorFromResult(result); sqlErr != nil {
		return result, sqlErr
	}
	return result, nil
}

// SqlErrorFromResult converts a QueryResult whose Generic response is an
// ERR packet into a *SqlError, or returns nil if result carries no error.
func SqlErrorFromResult(result *resultset.QueryResult) error {
	if result == nil || result.Generic == nil || !result.Generic.IsError {
		return nil
	}
	return &SqlError{Code: result.Generic.ErrorCode, SQLState: result.Generic.SQLState, Message: result.Generic.Message}
}

// resolveFuture completes the in-flight future for this connection, if
// any. A response with no waiting future is discarded and logged.
func (c *Conn) resolveFuture(result *resultset.QueryResult, err error) {
	f, ok := c.futures.Take(c.connID)
	if !ok {
		log.Printf("[backendconn] response for connection %d with no waiting future, discarding", c.connID)
		return
	}
	if err != nil {
		f.Fail(err)
		return
	}
	f.Complete(result)
}

// failInFlight completes any in-flight future with a connection-level
// error and removes the channel mapping; the connection cannot serve
// further requests after this.
func (c *Conn) failInFlight(err error) {
	if err == nil || err == io.EOF {
		return
	}
	if perr, ok := err.(*ProtocolError); ok {
		metrics.ProtocolErrorsTotal.WithLabelValues(perr.Op).Inc()
	}
	if f, ok := c.futures.Take(c.connID); ok {
		f.Fail(err)
	}
	c.channels.Remove(c.channel)
}

// Close releases the underlying transport.
func (c *Conn) Close() error {
	return c.netConn.Close()
}
