package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// statusFrames cycle on the activity line while an operation runs.
var statusFrames = []string{"◐", "◓", "◑", "◒"}

// status is the activity line for the CLI's long operations, training above
// all. It animates on stderr with the elapsed time folded in, and ends by
// replacing the line with a success or failure summary carrying the total
// duration.
type status struct {
	message string
	start   time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// startStatus begins animating immediately. The animation stops on its own
// when ctx is cancelled; otherwise succeed or fail ends it.
func startStatus(ctx context.Context, message string) *status {
	ctx, cancel := context.WithCancel(ctx)
	s := &status{
		message: message,
		start:   time.Now(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *status) run() {
	defer close(s.done)
	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			frame := statusFrames[i%len(statusFrames)]
			elapsed := time.Since(s.start).Round(100 * time.Millisecond)
			fmt.Fprintf(os.Stderr, "\r%s %s %s",
				styleIconStatus.Render(frame),
				StyleDim.Render(s.message),
				StyleDim.Render(fmt.Sprintf("(%s)", elapsed)))
		}
	}
}

// halt stops the animation goroutine and erases the line. Waiting on done
// keeps the goroutine's writes off the terminal before the summary prints.
func (s *status) halt() {
	s.cancel()
	<-s.done
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(s.message)+20))
}

// succeed replaces the activity line with a completion summary and the total
// elapsed time, rounded to the millisecond.
func (s *status) succeed(format string, args ...any) {
	s.halt()
	elapsed := time.Since(s.start).Round(time.Millisecond)
	printSuccess("%s %s", fmt.Sprintf(format, args...),
		StyleDim.Render(fmt.Sprintf("(%s)", elapsed)))
}

// fail replaces the activity line with an error summary.
func (s *status) fail(format string, args ...any) {
	s.halt()
	printError(format, args...)
}
