package wire

// Packet header sentinels.
const (
	HeaderOK  byte = 0x00
	HeaderEOF byte = 0xfe
	HeaderERR byte = 0xff
)

// Capability flags exchanged at handshake.
const (
	ClientLongPassword    uint32 = 0x00000001
	ClientFoundRows       uint32 = 0x00000002
	ClientLongFlag        uint32 = 0x00000004
	ClientConnectWithDB   uint32 = 0x00000008
	ClientProtocol41      uint32 = 0x00000200
	ClientSSL             uint32 = 0x00000800
	ClientTransactions    uint32 = 0x00002000
	ClientSecureConn      uint32 = 0x00008000
	ClientMultiStatements uint32 = 0x00010000
	ClientMultiResults    uint32 = 0x00020000
	ClientPluginAuth      uint32 = 0x00080000

	// DefaultClientCapabilities is what the backend-facing client offers in
	// its HandshakeResponse41, mirroring mariadb.DEFAULT_CAPABILITY.
	DefaultClientCapabilities = ClientLongPassword | ClientLongFlag |
		ClientConnectWithDB | ClientProtocol41 |
		ClientTransactions | ClientSecureConn
)

// Server status flags (subset used by this module).
const (
	ServerStatusInTrans   uint16 = 0x0001
	ServerStatusAutocommit uint16 = 0x0002
)

// CharsetUTF8General is the ServerInfo.CHARSET constant used in the
// HandshakeResponse41's charset field.
const CharsetUTF8General uint8 = 33

// MaxClientPacketSize is sent in HandshakeResponse41's max-packet-size field.
const MaxClientPacketSize uint32 = 16777215

// HandshakeV10 is the server greeting a backend sends first.
type HandshakeV10 struct {
	ProtocolVersion   uint8
	ServerVersion     string
	ConnectionID      uint32
	AuthPluginData    []byte // salt, part1(8) + part2(>=12), null-stripped
	CapabilityFlags   uint32
	CharacterSet      uint8
	StatusFlags       uint16
	AuthPluginName    string
}

// DecodeHandshakeV10 parses a handshake packet payload.
func DecodeHandshakeV10(payload []byte) (*HandshakeV10, error) {
	r := NewReader(payload)
	h := &HandshakeV10{}
	var err error
	if h.ProtocolVersion, err = r.Int1(); err != nil {
		return nil, err
	}
	if h.ServerVersion, err = r.NullTerminatedString(); err != nil {
		return nil, err
	}
	if h.ConnectionID, err = r.Int4(); err != nil {
		return nil, err
	}
	salt1, err := r.FixedString(8)
	if err != nil {
		return nil, err
	}
	if err := r.Skip(1); err != nil { // filler
		return nil, err
	}
	capLow, err := r.Int2()
	if err != nil {
		return nil, err
	}
	if h.CharacterSet, err = r.Int1(); err != nil {
		return nil, err
	}
	if h.StatusFlags, err = r.Int2(); err != nil {
		return nil, err
	}
	capHigh, err := r.Int2()
	if err != nil {
		return nil, err
	}
	h.CapabilityFlags = uint32(capLow) | uint32(capHigh)<<16

	authPluginDataLen, err := r.Int1()
	if err != nil {
		return nil, err
	}
	if err := r.Skip(10); err != nil { // reserved
		return nil, err
	}

	salt2Len := int(authPluginDataLen) - 8
	if salt2Len < 13 {
		salt2Len = 13
	}
	salt2, err := r.FixedString(salt2Len)
	if err != nil {
		return nil, err
	}
	// salt2 is null-terminated; strip the trailing zero byte.
	if len(salt2) > 0 && salt2[len(salt2)-1] == 0 {
		salt2 = salt2[:len(salt2)-1]
	}
	h.AuthPluginData = append([]byte(salt1), []byte(salt2)...)

	if h.CapabilityFlags&ClientPluginAuth != 0 && r.Len() > 0 {
		h.AuthPluginName, _ = r.NullTerminatedString()
	}
	return h, nil
}

// EncodeHandshakeResponse41 builds the client's reply to a HandshakeV10:
// capability flags, max packet size, charset, 23 reserved bytes,
// username, length-encoded auth response, schema name.
func EncodeHandshakeResponse41(capabilities uint32, username string, authResponse []byte, schema string) []byte {
	w := NewWriter(64 + len(username) + len(authResponse) + len(schema))
	w.PutInt4(capabilities)
	w.PutInt4(MaxClientPacketSize)
	w.PutInt1(CharsetUTF8General)
	w.PutZero(23)
	w.PutNullTerminatedString(username)
	w.PutLengthEncodedString(authResponse)
	if capabilities&ClientConnectWithDB != 0 {
		w.PutNullTerminatedString(schema)
	}
	return w.Bytes()
}

// WriteOKPacket builds an OK packet payload (no frame header).
func WriteOKPacket(affectedRows, lastInsertID uint64, status uint16, capabilities uint32) []byte {
	w := NewWriter(16)
	w.PutInt1(HeaderOK)
	w.PutLengthEncodedInt(affectedRows)
	w.PutLengthEncodedInt(lastInsertID)
	if capabilities&ClientProtocol41 != 0 {
		w.PutInt2(status)
		w.PutInt2(0) // warnings
	}
	return w.Bytes()
}

// WriteErrorPacket builds an ERR packet payload.
func WriteErrorPacket(code uint16, sqlState, message string, capabilities uint32) []byte {
	w := NewWriter(16 + len(message))
	w.PutInt1(HeaderERR)
	w.PutInt2(code)
	if capabilities&ClientProtocol41 != 0 {
		w.PutFixedString("#")
		w.PutFixedString(sqlState)
	}
	w.PutFixedString(message)
	return w.Bytes()
}

// WriteEOFPacket builds an EOF packet payload.
func WriteEOFPacket(status uint16, capabilities uint32) []byte {
	w := NewWriter(8)
	w.PutInt1(HeaderEOF)
	if capabilities&ClientProtocol41 != 0 {
		w.PutInt2(0) // warnings
		w.PutInt2(status)
	}
	return w.Bytes()
}
