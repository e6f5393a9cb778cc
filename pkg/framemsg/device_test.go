package framemsg

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
)

// drain closes host and returns every packet the device end received.
func drain(host, device *PipeLink) []string {
	host.Close()
	var got []string
	for p, err := range device.Packets() {
		if err != nil {
			break
		}
		got = append(got, string(p))
	}
	return got
}

func TestLuaQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{"a\\b", `"a\\b"`},
		{"line1\nline2\r\t", `"line1\nline2\r\t"`},
		{"\x00bell\x07", `"\000bell\007"`},
		{"caf\xc3\xa9", "\"caf\xc3\xa9\""},
	}
	for _, tc := range tests {
		if got := luaQuote(tc.in); got != tc.want {
			t.Errorf("luaQuote(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestLuaChunks(t *testing.T) {
	content := []byte(strings.Repeat("ab\"", 10))
	chunks := luaChunks(content, 8)
	for _, c := range chunks {
		if len(c) > 8 {
			t.Errorf("chunk %q longer than 8", c)
		}
		if strings.HasSuffix(c, `\`) && !strings.HasSuffix(c, `\\`) {
			t.Errorf("chunk %q splits an escape", c)
		}
	}
	if got, want := strings.Join(chunks, ""), strings.Repeat(`ab\"`, 10); got != want {
		t.Errorf("joined = %q; want %q", got, want)
	}
	if chunks := luaChunks(nil, 8); len(chunks) != 0 {
		t.Errorf("empty content produced %d chunks", len(chunks))
	}
}

func TestDevice_Controls(t *testing.T) {
	host, device := NewPipe()
	defer device.Close()
	d := NewDevice(host)
	ctx := context.Background()

	if err := d.SendBreak(ctx); err != nil {
		t.Fatal(err)
	}
	if err := d.SendReset(ctx); err != nil {
		t.Fatal(err)
	}
	if err := d.SendStatus(ctx, 0x35, "SEABLUE", "Connected"); err != nil {
		t.Fatal(err)
	}
	if err := d.StartApp(ctx, "main"); err != nil {
		t.Fatal(err)
	}

	want := []string{"\x03", "\x04", "\x01\x35SEABLUE,Connected", `require("main")`}
	if got := drain(host, device); !slices.Equal(got, want) {
		t.Errorf("packets = %q; want %q", got, want)
	}
}

func TestDevice_SendLuaTooLong(t *testing.T) {
	host, device := NewPipe()
	defer device.Close()
	defer host.Close()
	d := NewDevice(host)
	d.MaxLuaLength = 10
	if err := d.SendLua(context.Background(), "print(12345)"); err == nil {
		t.Fatal("SendLua accepted an oversized statement")
	}
}

func TestDevice_UploadFile(t *testing.T) {
	host, device := NewPipe()
	defer device.Close()
	d := NewDevice(host)
	d.MaxLuaLength = 40

	content := strings.Repeat("print(\"hi\")\nx=1\n", 3)
	if err := d.UploadFile(context.Background(), []byte(content), "main.lua"); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}

	got := drain(host, device)
	if len(got) < 3 {
		t.Fatalf("got %d packets; want at least 3", len(got))
	}
	if got[0] != `f=frame.file.open("main.lua",'w')` {
		t.Errorf("open = %q", got[0])
	}
	if got[len(got)-1] != "f:close()" {
		t.Errorf("close = %q", got[len(got)-1])
	}
	var body strings.Builder
	for _, w := range got[1 : len(got)-1] {
		if len(w) > 40 {
			t.Errorf("write %q exceeds limit", w)
		}
		inner, ok := strings.CutPrefix(w, `f:write("`)
		if !ok {
			t.Fatalf("unexpected statement %q", w)
		}
		inner, ok = strings.CutSuffix(inner, `")`)
		if !ok {
			t.Fatalf("unexpected statement %q", w)
		}
		body.WriteString(inner)
	}
	if want := strings.Repeat(`print(\"hi\")\nx=1\n`, 3); body.String() != want {
		t.Errorf("uploaded = %q; want %q", body.String(), want)
	}
}

func TestDevice_SendOnClosedLink(t *testing.T) {
	host, device := NewPipe()
	defer device.Close()
	host.Close()
	d := NewDevice(host)
	if err := d.SendMessage(context.Background(), 0x30, []byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("SendMessage = %v; want ErrClosed", err)
	}
}
