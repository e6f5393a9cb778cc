package framemsg

import "fmt"

// DefaultBase is the message type base used by the bundled Lua application.
const DefaultBase byte = 0x30

// Packet markers understood by the device firmware.
const (
	packetData  byte = 0x01
	packetBreak byte = 0x03
	packetReset byte = 0x04
)

// MsgType identifies the payload carried by a data packet.
type MsgType byte

func (t MsgType) String() string {
	return fmt.Sprintf("0x%02x", byte(t))
}

// MsgTypes holds the message types of one application, all relative to a
// configured base value.
type MsgTypes struct {
	Base MsgType

	// Command carries a REPL line, host to device.
	Command MsgType
	// Reply carries textual replies from the device; host to device it
	// carries the time sync payload.
	Reply MsgType
	// ImageChunk carries one chunk of a JPEG capture.
	ImageChunk MsgType
	// ImageEnd marks the end of a JPEG capture.
	ImageEnd MsgType
	// Audio carries 16 kHz mono s16le microphone samples.
	Audio MsgType
	// Status updates the status banner ("COLOR,text"), host to device.
	Status MsgType
	// Sentence carries a spoken sentence for display, host to device.
	Sentence MsgType
}

// TypesAt returns the message types relative to base.
func TypesAt(base byte) MsgTypes {
	b := MsgType(base)
	return MsgTypes{
		Base:       b,
		Command:    b,
		Reply:      b + 1,
		ImageChunk: b + 2,
		ImageEnd:   b + 3,
		Audio:      b + 4,
		Status:     b + 5,
		Sentence:   b + 6,
	}
}

// Frame is one typed unit received from or sent to the device. Payload
// excludes the type byte. Frames passed to handlers must not be modified.
type Frame struct {
	Type    MsgType
	Payload []byte
}

// Encode returns the data packet for f.
func (f Frame) Encode() []byte {
	p := make([]byte, 0, len(f.Payload)+2)
	p = append(p, packetData, byte(f.Type))
	return append(p, f.Payload...)
}

// DecodePacket splits a link packet into a frame or print text. ok reports
// whether the packet was a data packet. A data packet too short to carry a
// type byte is reported as an error.
func DecodePacket(packet []byte) (f Frame, text string, ok bool, err error) {
	if len(packet) == 0 {
		return Frame{}, "", false, nil
	}
	if packet[0] != packetData {
		return Frame{}, string(packet), false, nil
	}
	if len(packet) < 2 {
		return Frame{}, "", false, fmt.Errorf("framemsg: data packet without type byte")
	}
	return Frame{Type: MsgType(packet[1]), Payload: packet[2:]}, "", true, nil
}
