package ili9488

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/flavioheleno/ili9488/rgb666"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// tx is one recorded bus transfer with the pin levels seen during it.
type tx struct {
	dc gpio.Level
	cs gpio.Level
	w  []byte
}

// bus records transfers along with the DC and CS levels at the time.
type bus struct {
	conntest.Record
	dc    *gpiotest.Pin
	cs    *gpiotest.Pin
	txs   []tx
	fail  error
	limit int
}

func (b *bus) Tx(w, r []byte) error {
	if b.fail != nil {
		return b.fail
	}
	t := tx{dc: b.dc.Read(), cs: gpio.Low, w: append([]byte(nil), w...)}
	if b.cs != nil {
		t.cs = b.cs.Read()
	}
	b.txs = append(b.txs, t)
	return b.Record.Tx(w, r)
}

func (b *bus) TxPackets(p []spi.Packet) error {
	return errors.New("not implemented")
}

// limitedBus is a bus advertising a maximum transfer size.
type limitedBus struct {
	*bus
}

func (l limitedBus) MaxTxSize() int {
	return l.limit
}

// port hands out a bus as SPI connection.
type port struct {
	b    *bus
	freq physic.Frequency
}

func (p *port) String() string { return "test port" }

func (p *port) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	p.freq = f
	return p.b, nil
}

func (p *port) LimitSpeed(f physic.Frequency) error { return nil }

// command is a command byte with the data bytes that followed it.
type command struct {
	op   byte
	data []byte
}

func (b *bus) commands() []command {
	var cmds []command
	for _, t := range b.txs {
		if t.dc == gpio.Low {
			for _, op := range t.w {
				cmds = append(cmds, command{op: op})
			}
			continue
		}
		if len(cmds) == 0 {
			cmds = append(cmds, command{op: 0xFF})
		}
		last := &cmds[len(cmds)-1]
		last.data = append(last.data, t.w...)
	}
	return cmds
}

func (b *bus) reset() {
	b.txs = nil
	b.Record.Ops = nil
}

func newTestDev(t *testing.T) (*Dev, *bus) {
	t.Helper()
	dc := &gpiotest.Pin{N: "DC"}
	cs := &gpiotest.Pin{N: "CS", L: gpio.High}
	b := &bus{dc: dc, cs: cs}
	d := newDev(b, dc, &Opts{CS: cs})
	d.sleep = func(time.Duration) {}
	return d, b
}

func TestNewSPI(t *testing.T) {
	dc := &gpiotest.Pin{N: "DC"}
	rst := &gpiotest.Pin{N: "RST"}
	p := &port{b: &bus{dc: dc}}

	if _, err := NewSPI(p, nil, nil); err == nil {
		t.Error("NewSPI without dc pin should fail")
	}

	d, err := NewSPI(p, dc, &Opts{RST: rst, Rotation: 90})
	if err != nil {
		t.Fatalf("NewSPI() error = %v", err)
	}
	if p.freq != 60*physic.MegaHertz {
		t.Errorf("frequency = %s, want 60MHz", p.freq)
	}
	if rst.Read() != gpio.High {
		t.Error("RST should be left high")
	}
	if d.Width() != 320 || d.Height() != 480 || d.Rotation() != 90 {
		t.Errorf("geometry = %dx%d@%d, want 320x480@90", d.Width(), d.Height(), d.Rotation())
	}
	cmds := p.b.commands()
	if cmds[0].op != cmdGammaPos {
		t.Errorf("first command = %#02x, want gamma (no software reset with RST pin)", cmds[0].op)
	}
	last := cmds[len(cmds)-1]
	if last.op != cmdMADCTL || !bytes.Equal(last.data, []byte{0x48}) {
		t.Errorf("last command = %#02x % X, want MADCTL 48", last.op, last.data)
	}
}

func TestDevString(t *testing.T) {
	d, _ := newTestDev(t)
	want := "ili9488.Dev{480x320, 0°}"
	if got := d.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestReset(t *testing.T) {
	d, b := newTestDev(t)
	rst := &gpiotest.Pin{N: "RST", L: gpio.High}
	d.rst = rst

	var levels []gpio.Level
	var delays []time.Duration
	d.sleep = func(dt time.Duration) {
		levels = append(levels, rst.Read())
		delays = append(delays, dt)
	}
	if err := d.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if len(levels) != 2 || levels[0] != gpio.Low || levels[1] != gpio.High {
		t.Errorf("RST levels during delays = %v, want [Low High]", levels)
	}
	for _, dt := range delays {
		if dt < 50*time.Millisecond {
			t.Errorf("settle delay %s, want >= 50ms", dt)
		}
	}
	if len(b.txs) != 0 {
		t.Errorf("hardware reset sent %d transfers, want 0", len(b.txs))
	}
}

func TestSoftwareReset(t *testing.T) {
	d, b := newTestDev(t)
	var delays []time.Duration
	d.sleep = func(dt time.Duration) { delays = append(delays, dt) }

	if err := d.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	cmds := b.commands()
	if len(cmds) != 1 || cmds[0].op != cmdSoftReset {
		t.Errorf("commands = %v, want software reset", cmds)
	}
	if len(delays) != 1 || delays[0] != 150*time.Millisecond {
		t.Errorf("delays = %v, want [150ms]", delays)
	}
}

func TestInit(t *testing.T) {
	d, b := newTestDev(t)
	var delays []time.Duration
	d.sleep = func(dt time.Duration) { delays = append(delays, dt) }

	if err := d.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	want := []command{
		{0xE0, []byte{0x00, 0x03, 0x09, 0x08, 0x16, 0x0A, 0x3F, 0x78, 0x4C, 0x09, 0x0A, 0x08, 0x16, 0x1A, 0x0F}},
		{0xE1, []byte{0x00, 0x16, 0x19, 0x03, 0x0F, 0x05, 0x32, 0x45, 0x46, 0x04, 0x0E, 0x0D, 0x35, 0x37, 0x0F}},
		{0xC0, []byte{0x17, 0x15}},
		{0xC1, []byte{0x41}},
		{0xC5, []byte{0x00, 0x12, 0x80}},
		{0x3A, []byte{0x66}},
		{0xB0, []byte{0x00}},
		{0xB1, []byte{0xA0}},
		{0xB4, []byte{0x02}},
		{0xB6, []byte{0x02, 0x02, 0x3B}},
		{0xB7, []byte{0xC6}},
		{0xF7, []byte{0xA9, 0x51, 0x2C, 0x82}},
		{0x11, nil},
		{0x29, nil},
	}
	got := b.commands()
	if len(got) != len(want) {
		t.Fatalf("got %d commands, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].op != want[i].op || !bytes.Equal(got[i].data, want[i].data) {
			t.Errorf("command %d = %#02x % X, want %#02x % X", i, got[i].op, got[i].data, want[i].op, want[i].data)
		}
	}
	if len(delays) != 2 || delays[0] != 120*time.Millisecond || delays[1] != 25*time.Millisecond {
		t.Errorf("delays = %v, want [120ms 25ms]", delays)
	}
}

func TestRotate(t *testing.T) {
	tests := []struct {
		degrees       int
		wantRot       int
		wantMode      byte
		width, height int
	}{
		{0, 0, 0x28, 480, 320},
		{90, 90, 0x48, 320, 480},
		{180, 180, 0xE8, 480, 320},
		{270, 270, 0x88, 320, 480},
		{360, 0, 0x28, 480, 320},
		{450, 90, 0x48, 320, 480},
		{-90, 270, 0x88, 320, 480},
		{-540, 180, 0xE8, 480, 320},
	}

	for _, tt := range tests {
		d, b := newTestDev(t)
		if err := d.Rotate(tt.degrees); err != nil {
			t.Fatalf("Rotate(%d) error = %v", tt.degrees, err)
		}
		cmds := b.commands()
		if len(cmds) != 1 || cmds[0].op != cmdMADCTL || !bytes.Equal(cmds[0].data, []byte{tt.wantMode}) {
			t.Errorf("Rotate(%d) sent %v, want MADCTL %#02x", tt.degrees, cmds, tt.wantMode)
		}
		if d.Rotation() != tt.wantRot || d.Width() != tt.width || d.Height() != tt.height {
			t.Errorf("Rotate(%d) state = %d %dx%d, want %d %dx%d",
				tt.degrees, d.Rotation(), d.Width(), d.Height(), tt.wantRot, tt.width, tt.height)
		}
	}
}

func TestRotateUnsupported(t *testing.T) {
	d, b := newTestDev(t)
	if err := d.Rotate(90); err != nil {
		t.Fatal(err)
	}
	b.reset()

	for _, deg := range []int{45, -1, 359, 91} {
		if err := d.Rotate(deg); err != nil {
			t.Errorf("Rotate(%d) error = %v, want nil", deg, err)
		}
	}
	if len(b.txs) != 0 {
		t.Errorf("unsupported rotations sent %d transfers, want 0", len(b.txs))
	}
	if d.Rotation() != 90 || d.Width() != 320 || d.Height() != 480 {
		t.Errorf("state changed to %d %dx%d", d.Rotation(), d.Width(), d.Height())
	}
}

func TestSetWindow(t *testing.T) {
	d, b := newTestDev(t)
	if err := d.SetWindow(0x102, 3, 0x1DF, 0x13F); err != nil {
		t.Fatal(err)
	}
	want := []command{
		{cmdColumnSet, []byte{0x01, 0x02, 0x01, 0xDF}},
		{cmdPageSet, []byte{0x00, 0x03, 0x01, 0x3F}},
		{cmdMemWrite, nil},
	}
	got := b.commands()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i].op != want[i].op || !bytes.Equal(got[i].data, want[i].data) {
			t.Errorf("command %d = %#02x % X, want %#02x % X", i, got[i].op, got[i].data, want[i].op, want[i].data)
		}
	}
}

func TestTransactionPins(t *testing.T) {
	d, b := newTestDev(t)
	if err := d.WriteCommand(0x29); err != nil {
		t.Fatal(err)
	}
	if err := d.WriteData(1, 2, 3); err != nil {
		t.Fatal(err)
	}
	if len(b.txs) != 2 {
		t.Fatalf("got %d transfers, want 2", len(b.txs))
	}
	if b.txs[0].dc != gpio.Low || b.txs[1].dc != gpio.High {
		t.Errorf("DC levels = %v, %v, want Low, High", b.txs[0].dc, b.txs[1].dc)
	}
	for i, tx := range b.txs {
		if tx.cs != gpio.Low {
			t.Errorf("transfer %d: CS not asserted", i)
		}
	}
	if b.cs.Read() != gpio.High {
		t.Error("CS not released after transaction")
	}
}

func TestTransactionReleasesCSOnError(t *testing.T) {
	d, b := newTestDev(t)
	b.fail = errors.New("bus fault")

	if err := d.WriteData(1, 2, 3); !errors.Is(err, b.fail) {
		t.Errorf("WriteData() error = %v, want %v", err, b.fail)
	}
	if b.cs.Read() != gpio.High {
		t.Error("CS not released after failed transfer")
	}
	if err := d.FillRect(0, 0, 10, 10, rgb666.Red); err == nil {
		t.Error("FillRect() should propagate the bus error")
	}
	if b.cs.Read() != gpio.High {
		t.Error("CS not released after failed FillRect")
	}
}

// brokenPin is an output pin that cannot be driven.
type brokenPin struct {
	gpiotest.Pin
}

func (p *brokenPin) Out(l gpio.Level) error {
	return errors.New("pin stuck")
}

func TestTransactionDCError(t *testing.T) {
	dc := &brokenPin{Pin: gpiotest.Pin{N: "DC"}}
	cs := &gpiotest.Pin{N: "CS", L: gpio.High}
	b := &bus{dc: &dc.Pin, cs: cs}
	d := newDev(b, dc, &Opts{CS: cs})

	err := d.WriteCommand(cmdDisplayOn)
	if err == nil || !strings.Contains(err.Error(), "ili9488: failed to set DC") {
		t.Errorf("WriteCommand() error = %v, want DC failure", err)
	}
	if len(b.txs) != 0 {
		t.Errorf("sent %d transfers with DC unset", len(b.txs))
	}
	if cs.Read() != gpio.High {
		t.Error("CS not released after DC failure")
	}
}

func TestWriteDataChunked(t *testing.T) {
	dc := &gpiotest.Pin{N: "DC"}
	cs := &gpiotest.Pin{N: "CS", L: gpio.High}
	b := &bus{dc: dc, cs: cs, limit: 4}
	d := newDev(limitedBus{b}, dc, &Opts{CS: cs})

	data := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	if err := d.WriteData(data...); err != nil {
		t.Fatal(err)
	}
	if len(b.txs) != 3 {
		t.Fatalf("got %d transfers, want 3", len(b.txs))
	}
	var all []byte
	for _, tx := range b.txs {
		if len(tx.w) > 4 {
			t.Errorf("transfer of %d bytes exceeds limit", len(tx.w))
		}
		if tx.cs != gpio.Low {
			t.Error("CS released between chunks")
		}
		all = append(all, tx.w...)
	}
	if !bytes.Equal(all, data) {
		t.Errorf("data = %v, want %v", all, data)
	}
}

func TestWriteDataEmpty(t *testing.T) {
	d, b := newTestDev(t)
	if err := d.WriteData(); err != nil {
		t.Fatal(err)
	}
	if len(b.txs) != 0 {
		t.Errorf("empty WriteData sent %d transfers", len(b.txs))
	}
}

func TestInvert(t *testing.T) {
	d, b := newTestDev(t)
	if err := d.Invert(true); err != nil {
		t.Fatal(err)
	}
	if err := d.Invert(false); err != nil {
		t.Fatal(err)
	}
	cmds := b.commands()
	if len(cmds) != 2 || cmds[0].op != cmdInvertOn || cmds[1].op != cmdInvertOff {
		t.Errorf("commands = %v, want INVON, INVOFF", cmds)
	}
}

func TestHalt(t *testing.T) {
	d, b := newTestDev(t)
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	cmds := b.commands()
	if len(cmds) != 2 || cmds[0].op != cmdDisplayOff || cmds[1].op != cmdSleepIn {
		t.Errorf("commands = %v, want DISPOFF, SLPIN", cmds)
	}

	if err := d.FillScreen(rgb666.Black); err == nil {
		t.Error("FillScreen should fail when halted")
	}
	if err := d.Pixel(0, 0, rgb666.Black); err == nil {
		t.Error("Pixel should fail when halted")
	}
	if err := d.HLine(0, 0, 5, rgb666.Black); err == nil {
		t.Error("HLine should fail when halted")
	}
	if err := d.Image(0, 0, 1, 1, []byte{0, 0, 0}); err == nil {
		t.Error("Image should fail when halted")
	}
	if err := d.Text(0, 0, "x", TextStyle{}); err == nil {
		t.Error("Text should fail when halted")
	}
	if err := d.Rotate(90); err == nil {
		t.Error("Rotate should fail when halted")
	}
	if err := d.Invert(true); err == nil {
		t.Error("Invert should fail when halted")
	}

	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	if err := d.Pixel(0, 0, rgb666.Black); err != nil {
		t.Errorf("Pixel after Init error = %v", err)
	}
}
