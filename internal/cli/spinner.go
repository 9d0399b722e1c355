package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// waitFrames cycles while a render is in flight.
var waitFrames = [...]string{"◐", "◓", "◑", "◒"}

// renderWait animates a single-line wait indicator showing the message
// and the elapsed time while the render backend works. It writes to
// stderr so piped output stays clean.
type renderWait struct {
	message string
	out     io.Writer
	began   time.Time
	stop    chan struct{}
	parked  chan struct{}
	once    sync.Once
}

func newRenderWait(message string) *renderWait {
	return &renderWait{
		message: message,
		out:     os.Stderr,
		stop:    make(chan struct{}),
		parked:  make(chan struct{}),
	}
}

// Start begins the animation. The indicator also winds down when ctx is
// cancelled, so an interrupted command leaves a clean line behind.
func (w *renderWait) Start(ctx context.Context) {
	w.began = time.Now()
	go func() {
		defer close(w.parked)
		tick := time.NewTicker(120 * time.Millisecond)
		defer tick.Stop()
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				w.clear()
				return
			case <-w.stop:
				return
			case <-tick.C:
				w.draw(waitFrames[i%len(waitFrames)])
			}
		}
	}()
}

// Stop halts the animation and clears the line. Safe to call more than
// once.
func (w *renderWait) Stop() {
	w.once.Do(func() { close(w.stop) })
	<-w.parked
	w.clear()
}

// Elapsed reports how long the indicator has been running.
func (w *renderWait) Elapsed() time.Duration {
	return time.Since(w.began)
}

func (w *renderWait) draw(frame string) {
	elapsed := fmt.Sprintf("%.1fs", w.Elapsed().Seconds())
	fmt.Fprintf(w.out, "\r%s %s %s",
		styleIconSpinner.Render(frame),
		StyleDim.Render(w.message),
		StyleDim.Render(elapsed))
}

func (w *renderWait) clear() {
	fmt.Fprintf(w.out, "\r%s\r", strings.Repeat(" ", len(w.message)+12))
}
