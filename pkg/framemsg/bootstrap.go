package framemsg

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Defaults for Bootstrap.
const (
	DefaultSettle     = time.Second
	DefaultAppName    = "main"
	DefaultAppFile    = "lua-repl.lua"
	DefaultLoadingMsg = "Loading... "
)

// DefaultLibs are the standard Lua libraries uploaded with every application.
var DefaultLibs = []string{"data"}

// Step is one step of the bootstrap handshake.
type Step int

const (
	StepInterrupt Step = iota
	StepSettle
	StepShowLoading
	StepUploadApp
	StepUploadLibs
	StepAttachPrint
	StepStart
)

func (s Step) String() string {
	switch s {
	case StepInterrupt:
		return "interrupt"
	case StepSettle:
		return "settle"
	case StepShowLoading:
		return "show-loading"
	case StepUploadApp:
		return "upload-app"
	case StepUploadLibs:
		return "upload-libs"
	case StepAttachPrint:
		return "attach-print"
	case StepStart:
		return "start"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// handshake is the fixed step order run by Bootstrap.
var handshake = []Step{
	StepInterrupt, StepSettle,
	StepInterrupt, StepSettle,
	StepShowLoading,
	StepUploadApp,
	StepUploadLibs,
	StepAttachPrint,
	StepSettle,
	StepStart,
	StepSettle,
}

// Bootstrap brings the device from an unknown state to a freshly started
// application. Steps run strictly in order; none is retried and the first
// error aborts the sequence.
type Bootstrap struct {
	Device *Device
	Router *Router

	// Print is attached to Router after the upload.
	Print PrintHandler

	// Libs holds "<name>.min.lua" files for LibNames. Required when
	// LibNames is not empty.
	Libs     fs.FS
	LibNames []string

	// AppName is the device module name of the application; the
	// application is stored as AppName + ".lua". Defaults to "main".
	AppName string

	// Settle is the pause between steps. Defaults to one second.
	Settle time.Duration

	// ReadFile loads the local application. Defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)

	// OnStep, if set, is called before each step.
	OnStep func(Step)

	Logger Logger
}

// Run performs the handshake, uploading the local file appFile as the
// application.
func (b *Bootstrap) Run(ctx context.Context, appFile string) error {
	for _, step := range handshake {
		if b.OnStep != nil {
			b.OnStep(step)
		}
		if err := b.run(ctx, step, appFile); err != nil {
			return b.logger().Errorf("bootstrap %s: %w", step, err)
		}
	}
	b.logger().InfoPrintf("bootstrap: started %s from %s", b.appName(), appFile)
	return nil
}

func (b *Bootstrap) run(ctx context.Context, step Step, appFile string) error {
	switch step {
	case StepInterrupt:
		return b.Device.SendBreak(ctx)
	case StepSettle:
		return b.settle(ctx)
	case StepShowLoading:
		if err := b.Device.PrintShortText(ctx, DefaultLoadingMsg); err != nil {
			b.logger().WarnPrintf("bootstrap: show loading: %v", err)
		}
		return nil
	case StepUploadApp:
		read := b.ReadFile
		if read == nil {
			read = os.ReadFile
		}
		content, err := read(appFile)
		if err != nil {
			return err
		}
		return b.Device.UploadFile(ctx, content, b.appName()+".lua")
	case StepUploadLibs:
		return b.uploadLibs(ctx)
	case StepAttachPrint:
		if b.Router != nil {
			b.Router.SetPrintHandler(b.Print)
		}
		return nil
	case StepStart:
		return b.Device.StartApp(ctx, b.appName())
	}
	return fmt.Errorf("unknown step %v", step)
}

func (b *Bootstrap) uploadLibs(ctx context.Context) error {
	for _, name := range b.LibNames {
		if b.Libs == nil {
			return fmt.Errorf("no library source for %q", name)
		}
		file := name + ".min.lua"
		content, err := fs.ReadFile(b.Libs, file)
		if err != nil {
			return err
		}
		if err := b.Device.UploadFile(ctx, content, file); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bootstrap) settle(ctx context.Context) error {
	d := b.Settle
	if d <= 0 {
		d = DefaultSettle
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bootstrap) appName() string {
	if b.AppName != "" {
		return b.AppName
	}
	return DefaultAppName
}

func (b *Bootstrap) logger() Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return DefaultLogger()
}
