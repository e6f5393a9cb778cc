package framemsg

import (
	"context"
	"fmt"
	"strings"
)

// DefaultMaxLuaLength is the longest Lua statement sent in one packet.
const DefaultMaxLuaLength = 240

// Device issues commands to the glasses over a Link.
type Device struct {
	link Link

	// MaxLuaLength bounds a single Lua statement; file uploads are split
	// into writes that respect it.
	MaxLuaLength int

	logger Logger
}

// NewDevice creates a Device on link.
func NewDevice(link Link) *Device {
	return &Device{
		link:         link,
		MaxLuaLength: DefaultMaxLuaLength,
		logger:       DefaultLogger(),
	}
}

// SetLogger replaces the device logger.
func (d *Device) SetLogger(l Logger) {
	d.logger = l
}

// Link returns the underlying link.
func (d *Device) Link() Link {
	return d.link
}

// SendMessage sends a data packet of type t.
func (d *Device) SendMessage(ctx context.Context, t MsgType, payload []byte) error {
	d.logger.DebugPrintf("send message type=%v len=%d", t, len(payload))
	if err := d.link.Send(ctx, Frame{Type: t, Payload: payload}.Encode()); err != nil {
		return d.logger.Errorf("send message type=%v: %w", t, err)
	}
	return nil
}

// SendBreak interrupts the running Lua application.
func (d *Device) SendBreak(ctx context.Context) error {
	d.logger.DebugPrintf("send break")
	if err := d.link.Send(ctx, []byte{packetBreak}); err != nil {
		return d.logger.Errorf("send break: %w", err)
	}
	return nil
}

// SendReset restarts the firmware.
func (d *Device) SendReset(ctx context.Context) error {
	d.logger.DebugPrintf("send reset")
	if err := d.link.Send(ctx, []byte{packetReset}); err != nil {
		return d.logger.Errorf("send reset: %w", err)
	}
	return nil
}

// SendLua sends one Lua statement to the device REPL.
func (d *Device) SendLua(ctx context.Context, code string) error {
	if limit := d.maxLua(); len(code) > limit {
		return d.logger.Errorf("lua statement of %d bytes exceeds %d", len(code), limit)
	}
	if err := d.link.Send(ctx, []byte(code)); err != nil {
		return d.logger.Errorf("send lua: %w", err)
	}
	return nil
}

// PrintShortText shows a line of text at the top left of the display.
func (d *Device) PrintShortText(ctx context.Context, text string) error {
	return d.SendLua(ctx, fmt.Sprintf("frame.display.text(%s,1,1);frame.display.show();print(0)", luaQuote(text)))
}

// UploadFile writes content to a file named name on the device, replacing
// any existing file. Chunks are sent back to back without waiting for an
// acknowledgement; a real BLE link may need a print ack per chunk.
func (d *Device) UploadFile(ctx context.Context, content []byte, name string) error {
	if err := d.SendLua(ctx, fmt.Sprintf("f=frame.file.open(%s,'w')", luaQuote(name))); err != nil {
		return err
	}
	const wrap = len(`f:write("")`)
	for _, chunk := range luaChunks(content, d.maxLua()-wrap) {
		if err := d.SendLua(ctx, `f:write("`+chunk+`")`); err != nil {
			return err
		}
	}
	if err := d.SendLua(ctx, "f:close()"); err != nil {
		return err
	}
	d.logger.DebugPrintf("uploaded %s (%d bytes)", name, len(content))
	return nil
}

// StartApp requires the named Lua module, which runs the application.
func (d *Device) StartApp(ctx context.Context, name string) error {
	return d.SendLua(ctx, fmt.Sprintf("require(%s)", luaQuote(name)))
}

// SendStatus updates the status banner drawn by the application.
func (d *Device) SendStatus(ctx context.Context, t MsgType, color, text string) error {
	return d.SendMessage(ctx, t, []byte(color+","+text))
}

func (d *Device) maxLua() int {
	if d.MaxLuaLength > 0 {
		return d.MaxLuaLength
	}
	return DefaultMaxLuaLength
}

// luaEscape returns the escaped form of b inside a double quoted Lua string.
func luaEscape(b byte) string {
	switch b {
	case '\\':
		return `\\`
	case '"':
		return `\"`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	}
	if b < 0x20 || b == 0x7f {
		return fmt.Sprintf(`\%03d`, b)
	}
	return string([]byte{b})
}

func luaQuote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		sb.WriteString(luaEscape(s[i]))
	}
	sb.WriteByte('"')
	return sb.String()
}

// luaChunks escapes content and splits it into pieces of at most limit
// escaped bytes, never splitting an escape sequence.
func luaChunks(content []byte, limit int) []string {
	limit = max(limit, 4)
	var (
		chunks []string
		sb     strings.Builder
	)
	for _, b := range content {
		e := luaEscape(b)
		if sb.Len()+len(e) > limit {
			chunks = append(chunks, sb.String())
			sb.Reset()
		}
		sb.WriteString(e)
	}
	if sb.Len() > 0 {
		chunks = append(chunks, sb.String())
	}
	return chunks
}
