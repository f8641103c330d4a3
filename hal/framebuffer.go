package hal

import (
	"errors"
	"image/color"
	"sync"

	"tinygo.org/x/drivers"
)

// Framebuffer is an in-memory RGB565 pixel buffer.
//
// It implements tinygo.org/x/drivers.Displayer so a tinyterm terminal
// can render text into it; the host window presents it on screen.
type Framebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	scroll int
	buf    []byte
}

var errFramebufferBounds = errors.New("framebuffer: out of bounds")

// NewFramebuffer returns a zeroed (black) framebuffer.
func NewFramebuffer(width, height int) *Framebuffer {
	stride := width * 2
	return &Framebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func (f *Framebuffer) Width() int          { return f.width }
func (f *Framebuffer) Height() int         { return f.height }
func (f *Framebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *Framebuffer) StrideBytes() int    { return f.stride }

// Size implements drivers.Displayer.
func (f *Framebuffer) Size() (x, y int16) {
	return int16(f.width), int16(f.height)
}

// SetPixel implements drivers.Displayer.
func (f *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	ix := int(x)
	iy := int(y)
	if ix < 0 || ix >= f.width || iy < 0 || iy >= f.height {
		return
	}

	pixel := rgb565(c.R, c.G, c.B)
	off := iy*f.stride + ix*2

	f.mu.Lock()
	f.buf[off] = byte(pixel)
	f.buf[off+1] = byte(pixel >> 8)
	f.mu.Unlock()
}

// Display implements drivers.Displayer. The host buffer is always
// current, so presenting is a no-op.
func (f *Framebuffer) Display() error { return nil }

// FillRectangle fills the given rectangle, like the hardware panels in
// the drivers repo do.
func (f *Framebuffer) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0, y0, w, h := int(x), int(y), int(width), int(height)
	if x0 < 0 || y0 < 0 || w <= 0 || h <= 0 || x0+w > f.width || y0+h > f.height {
		return errFramebufferBounds
	}

	pixel := rgb565(c.R, c.G, c.B)
	lo := byte(pixel)
	hi := byte(pixel >> 8)

	f.mu.Lock()
	for row := y0; row < y0+h; row++ {
		off := row*f.stride + x0*2
		for col := 0; col < w; col++ {
			f.buf[off] = lo
			f.buf[off+1] = hi
			off += 2
		}
	}
	f.mu.Unlock()
	return nil
}

// SetScroll selects the buffer line shown at the top of the display,
// mimicking the vertical scroll of the hardware panels.
func (f *Framebuffer) SetScroll(line int16) {
	f.mu.Lock()
	f.scroll = int(line) % f.height
	if f.scroll < 0 {
		f.scroll += f.height
	}
	f.mu.Unlock()
}

// SetRotation is accepted for Displayer compatibility; the host buffer
// does not rotate.
func (f *Framebuffer) SetRotation(rotation drivers.Rotation) error { return nil }

// ClearRGB fills the whole buffer with one color.
func (f *Framebuffer) ClearRGB(r, g, b uint8) {
	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)

	f.mu.Lock()
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
	f.mu.Unlock()
}

// snapshotRGB565 copies the buffer with the scroll offset applied, so
// the window sees what a scrolling panel would show.
func (f *Framebuffer) snapshotRGB565(dst []byte) {
	f.mu.Lock()
	if f.scroll == 0 {
		copy(dst, f.buf)
	} else {
		split := f.scroll * f.stride
		n := copy(dst, f.buf[split:])
		copy(dst[n:], f.buf[:split])
	}
	f.mu.Unlock()
}
