package connection

import (
	"bytes"
	"errors"
	"testing"
)

func Test_connectionHeader(t *testing.T) {
	ch := connectionHeader{
		Type:    uint16(ConnPeerToPeer),
		SrcPort: 9999,
		SrcIPv4: 0x7f080808,
	}
	b := &bytes.Buffer{}
	if err := ch.WriteTo(b); err != nil {
		t.Errorf("failed to write message header: %v", err)
	}
	var ch2 connectionHeader
	if err := ch2.ReadFrom(b); err != nil {
		t.Errorf("failed to read message header: %v", err)
	}
	if ch.Type != ch2.Type || ch.SrcPort != ch2.SrcPort || ch.SrcIPv4 != ch2.SrcIPv4 {
		t.Error("connection header content not match")
	}
}

func Test_Message(t *testing.T) {
	b := &bytes.Buffer{}
	{
		bs := []byte("123456")
		m := Message{
			Length: uint32(len(bs)),
			Data:   bs,
		}
		if err := m.WriteTo(b); err != nil {
			t.Errorf("Message::WriteTo failed: %v", err)
		}
	}
	{
		var m Message
		if err := m.ReadFrom(b); err != nil {
			t.Errorf("Message::ReadFrom failed: %v", err)
		}

		if m.Length != 6 {
			t.Errorf("Message::ReadFrom unexpected data")
		}
		if string(m.Data) != "123456" {
			t.Errorf("Message::ReadFrom unexpected data")
		}
	}
}

func Test_long_Message(t *testing.T) {
	b := &bytes.Buffer{}
	const str8 = `01234567`
	str1Ki := repeat(128, str8)
	str1Mi := repeat(1024, str1Ki)
	payload := repeat(16, str1Mi)
	{
		bs := []byte(payload)
		m := Message{
			Length: uint32(len(bs)),
			Data:   bs,
		}
		if err := m.WriteTo(b); err != nil {
			t.Errorf("Message::WriteTo failed: %v", err)
		}
	}
	{
		var m Message
		if err := m.ReadFrom(b); err != nil {
			t.Errorf("Message::ReadFrom failed: %v", err)
		}
		if int(m.Length) != len(payload) {
			t.Errorf("Message::ReadFrom unexpected data")
		}
	}
}

func Test_messageHeader(t *testing.T) {
	b := &bytes.Buffer{}
	{
		bs := []byte("123456")
		h := MessageHeader{
			NameLength: uint32(len(bs)),
			Name:       bs,
		}
		if err := h.WriteTo(b); err != nil {
			t.Errorf("Message::WriteTo failed: %v", err)
		}
	}
	{
		var h MessageHeader
		if err := h.ReadFrom(b); err != nil {
			t.Errorf("Message::ReadFrom failed: %v", err)
		}

		if h.NameLength != 6 {
			t.Errorf("Message::ReadFrom unexpected data")
		}
		if string(h.Name) != "123456" {
			t.Errorf("Message::ReadFrom unexpected data")
		}
	}
}

func repeat(n int, str string) string {
	var ss string
	for i := 0; i < n; i++ {
		ss += str
	}
	return ss
}

func Test_messageHeader_Expect(t *testing.T) {
	b := &bytes.Buffer{}
	name := []byte("9f3c0a11/p2p/7")
	h := MessageHeader{
		NameLength: uint32(len(name)),
		Name:       name,
	}
	if err := h.WriteTo(b); err != nil {
		t.Fatal(err)
	}
	var h2 MessageHeader
	if err := h2.Expect(bytes.NewReader(b.Bytes()), "9f3c0a11/p2p/7"); err != nil {
		t.Errorf("MessageHeader::Expect failed: %v", err)
	}
	if err := h2.Expect(bytes.NewReader(b.Bytes()), "9f3c0a11/p2p/8"); err == nil {
		t.Errorf("MessageHeader::Expect should reject other names")
	}
}

func Test_messageHeader_tooLong(t *testing.T) {
	b := &bytes.Buffer{}
	h := MessageHeader{NameLength: MaxNameLength + 1}
	if err := h.WriteTo(b); err != nil {
		t.Fatal(err)
	}
	var h2 MessageHeader
	if err := h2.ReadFrom(b); !errors.Is(err, ErrNameTooLong) {
		t.Errorf("expect ErrNameTooLong, got %v", err)
	}
}

func Test_bufferReuse(t *testing.T) {
	buf := GetBuf(minBufSize)
	if len(buf) != int(minBufSize) {
		t.Errorf("unexpected buffer size %d", len(buf))
	}
	PutBuf(buf)
	small := GetBuf(8)
	if len(small) != 8 {
		t.Errorf("unexpected buffer size %d", len(small))
	}
	PutBuf(small)

	odd := GetBuf(minBufSize + 1)
	if len(odd) != int(minBufSize)+1 || cap(odd) != 2*int(minBufSize) {
		t.Errorf("unexpected buffer %d/%d", len(odd), cap(odd))
	}
	PutBuf(odd)
	again := GetBuf(2 * minBufSize)
	if len(again) != 2*int(minBufSize) {
		t.Errorf("unexpected buffer size %d", len(again))
	}
}
