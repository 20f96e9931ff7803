package progress

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// TermUI is a full-screen Reporter adapted from earentir-mkfat's
// retrodfrg package: same title/phase-checklist/status-block layout and
// the same Ctrl+C/q/Escape screen-level quit handling, generalized from
// that package's single progress bar to the resize pipeline's six named
// phases and their step counters.
type TermUI struct {
	s        tcell.Screen
	stopChan chan struct{}
	once     sync.Once

	title        string
	summaryLines []string
	phaseDoneMap map[Phase]bool

	mu          sync.Mutex
	current     Phase
	currentDone int
	currentGoal int
	statusLines []string
}

// NewTermUI opens a screen and starts its event loop, mirroring
// retrodfrg.NewUI.
func NewTermUI(title string, summary []string) (*TermUI, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.DisableMouse()
	u := &TermUI{
		s:            s,
		stopChan:     make(chan struct{}),
		title:        title,
		summaryLines: append([]string(nil), summary...),
		phaseDoneMap: make(map[Phase]bool),
	}
	go u.eventLoop()
	u.draw()
	return u, nil
}

// Close restores the terminal, mirroring retrodfrg.UI.Close.
func (u *TermUI) Close() {
	if u.s == nil {
		return
	}
	u.s.Fini()
	u.s = nil
	fmt.Print("\033[?1049l\033[?25h")
}

// RequestStop signals the user pressed Ctrl+C/q/Escape. The resize engine
// itself does not poll this (spec.md's concurrency model recognizes only
// external process termination as cancellation); this only lets the CLI
// tear the screen down promptly instead of leaving it stuck until the
// pipeline finishes on its own.
func (u *TermUI) RequestStop() {
	u.once.Do(func() {
		close(u.stopChan)
		if u.s != nil {
			u.s.PostEvent(tcell.NewEventInterrupt(nil))
		}
	})
}

// IsStopped reports whether RequestStop has fired.
func (u *TermUI) IsStopped() bool {
	select {
	case <-u.stopChan:
		return true
	default:
		return false
	}
}

func (u *TermUI) Phase(p Phase, total int) {
	u.mu.Lock()
	u.current = p
	u.currentDone = 0
	u.currentGoal = total
	u.statusLines = append(u.statusLines, "-- "+string(p)+" --")
	u.trimStatus()
	u.mu.Unlock()
	u.draw()
}

func (u *TermUI) Step(p Phase, n int, status string) {
	u.mu.Lock()
	if p == u.current {
		u.currentDone += n
		if u.currentGoal > 0 && u.currentDone >= u.currentGoal {
			u.phaseDoneMap[p] = true
		}
	}
	if status != "" {
		u.statusLines = append(u.statusLines, status)
		u.trimStatus()
	}
	u.mu.Unlock()
	u.draw()
}

func (u *TermUI) Done(err error) {
	u.mu.Lock()
	if err == nil {
		u.phaseDoneMap[u.current] = true
		u.statusLines = append(u.statusLines, "done")
	} else {
		u.statusLines = append(u.statusLines, "failed: "+err.Error())
	}
	u.trimStatus()
	u.mu.Unlock()
	u.draw()
}

// trimStatus keeps only the most recent status lines, assuming mu held.
func (u *TermUI) trimStatus() {
	const maxLines = 12
	if len(u.statusLines) > maxLines {
		u.statusLines = u.statusLines[len(u.statusLines)-maxLines:]
	}
}

func (u *TermUI) draw() {
	if u.s == nil {
		return
	}
	u.mu.Lock()
	statusLines := append([]string(nil), u.statusLines...)
	phaseDone := make(map[Phase]bool, len(u.phaseDoneMap))
	for k, v := range u.phaseDoneMap {
		phaseDone[k] = v
	}
	u.mu.Unlock()

	u.s.Clear()
	w, h := u.s.Size()
	currentY := 0

	if u.title != "" {
		putStr(u.s, 0, currentY, strings.Repeat("═", w))
		centerX := (w - len(u.title)) / 2
		putStr(u.s, centerX, currentY, u.title)
		currentY++
	}

	for _, line := range u.summaryLines {
		if currentY >= h {
			break
		}
		putStr(u.s, 0, currentY, line)
		currentY++
	}

	if currentY < h {
		putStr(u.s, 0, currentY, strings.Repeat("─", w))
		putStr(u.s, 2, currentY, " Phase ")
		currentY++
	}
	if currentY < h {
		check := func(ok bool) rune {
			if ok {
				return '✓'
			}
			return ' '
		}
		var b strings.Builder
		for i, p := range Phases {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "[%c]%s", check(phaseDone[p]), p)
		}
		putStr(u.s, 0, currentY, b.String())
		currentY++
	}

	if currentY < h {
		putStr(u.s, 0, currentY, strings.Repeat("─", w))
		putStr(u.s, 2, currentY, " Status ")
		currentY++
	}
	for _, line := range statusLines {
		if currentY >= h {
			break
		}
		putStr(u.s, 0, currentY, line)
		currentY++
	}

	u.s.Show()
}

func putStr(s tcell.Screen, x, y int, str string) {
	w, _ := s.Size()
	for i, r := range []rune(str) {
		pos := x + i
		if pos >= w {
			break
		}
		s.SetContent(pos, y, r, nil, tcell.StyleDefault)
	}
}

func (u *TermUI) eventLoop() {
	for {
		select {
		case <-u.stopChan:
			return
		default:
		}
		ev := u.s.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyCtrlC:
				u.RequestStop()
			case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
				u.RequestStop()
			case ev.Key() == tcell.KeyEscape:
				u.RequestStop()
			}
		case *tcell.EventResize:
			u.s.Sync()
			u.draw()
		case *tcell.EventInterrupt:
			return
		case nil:
			return
		}
	}
}
