package display

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
)

var (
	valueStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	hintStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

const quitHint = "q / esc to quit"

// TerminalSink draws the value centered on a tcell screen. Quit keys (q, Esc,
// Ctrl-C) close the channel returned by Done.
type TerminalSink struct {
	screen tcell.Screen

	mu     sync.Mutex
	value  string
	drawMu sync.Mutex

	done      chan struct{}
	doneOnce  sync.Once
	closeOnce sync.Once
}

// NewTerminalSink opens the real terminal
func NewTerminalSink() (*TerminalSink, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal screen: %w", err)
	}
	return NewTerminalSinkWithScreen(screen)
}

// NewTerminalSinkWithScreen initializes screen and starts reading its events.
func NewTerminalSinkWithScreen(screen tcell.Screen) (*TerminalSink, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal screen: %w", err)
	}
	screen.HideCursor()

	s := &TerminalSink{
		screen: screen,
		done:   make(chan struct{}),
	}
	go s.pollEvents()
	s.draw()

	return s, nil
}

// Show replaces the displayed value
func (s *TerminalSink) Show(value string) {
	s.mu.Lock()
	changed := value != s.value
	s.value = value
	s.mu.Unlock()

	if changed {
		s.draw()
	}
}

// Done is closed when the user presses a quit key
func (s *TerminalSink) Done() <-chan struct{} {
	return s.done
}

// Close restores the terminal
func (s *TerminalSink) Close() error {
	s.closeOnce.Do(s.screen.Fini)
	return nil
}

func (s *TerminalSink) pollEvents() {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			// screen finalized
			return
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			if isQuitKey(ev.Key(), ev.Rune()) {
				s.doneOnce.Do(func() { close(s.done) })
			}
		case *tcell.EventResize:
			s.screen.Sync()
			s.draw()
		}
	}
}

func (s *TerminalSink) draw() {
	s.drawMu.Lock()
	defer s.drawMu.Unlock()

	s.mu.Lock()
	value := s.value
	s.mu.Unlock()

	s.screen.Clear()
	width, height := s.screen.Size()
	drawCentered(s.screen, width, height/2, value, valueStyle)
	drawCentered(s.screen, width, height-1, quitHint, hintStyle)
	s.screen.Show()
}

func drawCentered(screen tcell.Screen, width, y int, text string, style tcell.Style) {
	runes := []rune(text)
	x := (width - len(runes)) / 2
	if x < 0 {
		x = 0
	}
	for i, r := range runes {
		screen.SetContent(x+i, y, r, nil, style)
	}
}

func isQuitKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return r == 'q' || r == 'Q'
	}
	return false
}
