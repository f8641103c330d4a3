package hal

import (
	"sync"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// TerminalConsole renders console text onto a pixel display with
// tinyterm. The host framebuffer is the usual display; any panel
// satisfying the tinyterm Displayer contract works.
type TerminalConsole struct {
	mu   sync.Mutex
	term *tinyterm.Terminal
}

// NewTerminalConsole returns a console drawing to the given display.
func NewTerminalConsole(display tinyterm.Displayer) *TerminalConsole {
	term := tinyterm.NewTerminal(display)
	term.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: 10,
		FontOffset: 6,
	})
	return &TerminalConsole{term: term}
}

func (c *TerminalConsole) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.term.Write(p)
}
