package observability

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	colorReset    = "\033[0m"
	colorNeonCyan = "\033[96m"
)

// termMu keeps banner and log writes from interleaving.
var termMu sync.Mutex

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

type termWriter struct {
	w io.Writer
}

func (tw termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return tw.w.Write(p)
}

// NewTermWriter returns an io.Writer suitable for log.SetOutput().
func NewTermWriter() io.Writer {
	return termWriter{w: os.Stderr}
}

const banner = `
                    __
   ____ ___  ___  ___  / /_____  ________  ____
  / __ '__ \/ _ \/ _ \/ __/ __ \/ ___/ _ \/ __ \
 / / / / / /  __/  __/ /_/ /_/ / /  /  __/ /_/ /
/_/ /_/ /_/\___/\___/\__/ .___/_/   \___/ .___/
                       /_/             /_/
      >> AI MEETING PREPARATION AGENT <<
`

// PrintBanner centres the banner on stdout when it is a terminal.
func PrintBanner() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	width := termWidth()

	termMu.Lock()
	defer termMu.Unlock()
	for _, l := range strings.Split(banner, "\n") {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Printf("%s%s%s\n", strings.Repeat(" ", padding), colorNeonCyan+l, colorReset)
	}
}
