package wire

import "testing"

func TestReaderFixedWidthInts(t *testing.T) {
	payload := []byte{
		0x01,                   // Int1
		0x02, 0x00,             // Int2
		0x03, 0x00, 0x00,       // Int3
		0x04, 0x00, 0x00, 0x00, // Int4
	}
	r := NewReader(payload)
	if v, err := r.Int1(); err != nil || v != 1 {
		t.Fatalf("Int1 = %v, %v", v, err)
	}
	if v, err := r.Int2(); err != nil || v != 2 {
		t.Fatalf("Int2 = %v, %v", v, err)
	}
	if v, err := r.Int3(); err != nil || v != 3 {
		t.Fatalf("Int3 = %v, %v", v, err)
	}
	if v, err := r.Int4(); err != nil || v != 4 {
		t.Fatalf("Int4 = %v, %v", v, err)
	}
	if r.Len() != 0 {
		t.Errorf("expected fully consumed, have %d left", r.Len())
	}
}

func TestReaderPeekHeaderDoesNotConsume(t *testing.T) {
	r := NewReader([]byte{HeaderOK, 0x01, 0x02})
	b, ok := r.PeekHeader()
	if !ok || b != HeaderOK {
		t.Fatalf("PeekHeader = %v, %v", b, ok)
	}
	if r.Len() != 3 {
		t.Errorf("PeekHeader must not consume, Len() = %d", r.Len())
	}
	v, err := r.Int1()
	if err != nil || v != HeaderOK {
		t.Fatalf("subsequent Int1 = %v, %v", v, err)
	}
}

func TestReaderMarkReset(t *testing.T) {
	r := NewReader([]byte{0xAA, 0xBB, 0xCC})
	mark := r.Mark()
	r.Int1()
	r.Int1()
	r.Reset(mark)
	if r.Len() != 3 {
		t.Errorf("Reset should restore full length, got %d", r.Len())
	}
}

func TestReaderNullTerminatedString(t *testing.T) {
	r := NewReader([]byte("hello\x00world"))
	s, err := r.NullTerminatedString()
	if err != nil || s != "hello" {
		t.Fatalf("NullTerminatedString = %q, %v", s, err)
	}
	if rest := r.RestOfPacketString(); rest != "world" {
		t.Errorf("RestOfPacketString = %q", rest)
	}
}

func TestReaderNullTerminatedStringUnterminated(t *testing.T) {
	r := NewReader([]byte("noterminator"))
	if _, err := r.NullTerminatedString(); err == nil {
		t.Error("expected error for unterminated string")
	}
}

func TestLengthEncodedIntRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 250, 251, 65535, 65536, 1 << 23, 1 << 24, 1 << 40}
	for _, n := range cases {
		encoded := PutLengthEncodedInt(n)
		r := NewReader(encoded)
		got, isNull, err := r.LengthEncodedInt()
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if isNull {
			t.Fatalf("n=%d: unexpected isNull", n)
		}
		if got != n {
			t.Errorf("n=%d: got %d", n, got)
		}
		if r.Len() != 0 {
			t.Errorf("n=%d: %d bytes left over", n, r.Len())
		}
	}
}

func TestLengthEncodedIntNullSentinel(t *testing.T) {
	r := NewReader([]byte{0xfb})
	_, isNull, err := r.LengthEncodedInt()
	if err != nil || !isNull {
		t.Fatalf("isNull=%v, err=%v", isNull, err)
	}
}

func TestLengthEncodedIntMalformed(t *testing.T) {
	r := NewReader([]byte{0xfe, 0x01, 0x02}) // claims 8 bytes, only has 2
	if _, _, err := r.LengthEncodedInt(); err == nil {
		t.Error("expected error for truncated length-encoded int")
	}
}

func TestLengthEncodedStringRoundTrip(t *testing.T) {
	encoded := PutLengthEncodedString([]byte("shard_users"))
	r := NewReader(encoded)
	s, isNull, err := r.LengthEncodedString()
	if err != nil || isNull || s != "shard_users" {
		t.Fatalf("s=%q isNull=%v err=%v", s, isNull, err)
	}
}

func TestWriterMirrorsReader(t *testing.T) {
	w := NewWriter(0)
	w.PutInt1(1).PutInt2(2).PutInt3(3).PutInt4(4).PutInt6(6).PutInt8(8)
	r := NewReader(w.Bytes())
	if v, _ := r.Int1(); v != 1 {
		t.Errorf("Int1 = %d", v)
	}
	if v, _ := r.Int2(); v != 2 {
		t.Errorf("Int2 = %d", v)
	}
	if v, _ := r.Int3(); v != 3 {
		t.Errorf("Int3 = %d", v)
	}
	if v, _ := r.Int4(); v != 4 {
		t.Errorf("Int4 = %d", v)
	}
	if v, _ := r.Int6(); v != 6 {
		t.Errorf("Int6 = %d", v)
	}
	if v, _ := r.Int8(); v != 8 {
		t.Errorf("Int8 = %d", v)
	}
}

func TestWriteOKErrEOFPackets(t *testing.T) {
	ok := WriteOKPacket(5, 9, ServerStatusAutocommit, ClientProtocol41)
	if ok[0] != HeaderOK {
		t.Errorf("OK packet header = %#x", ok[0])
	}
	errPkt := WriteErrorPacket(1105, "HY000", "boom", ClientProtocol41)
	if errPkt[0] != HeaderERR {
		t.Errorf("ERR packet header = %#x", errPkt[0])
	}
	eof := WriteEOFPacket(ServerStatusAutocommit, ClientProtocol41)
	if eof[0] != HeaderEOF {
		t.Errorf("EOF packet header = %#x", eof[0])
	}
}
