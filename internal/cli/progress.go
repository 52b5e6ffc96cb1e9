package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"
)

// FetchSpinner shows an indeterminate spinner while a request is in flight.
type FetchSpinner struct {
	bar  *progressbar.ProgressBar
	done chan struct{}
}

// StartFetchSpinner starts a spinner with the given description on w.
func StartFetchSpinner(w io.Writer, description string) *FetchSpinner {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", description)),
		progressbar.OptionClearOnFinish(),
	)

	s := &FetchSpinner{bar: bar, done: make(chan struct{})}
	go s.spin()
	return s
}

func (s *FetchSpinner) spin() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.bar.Add(1); err != nil {
				slog.Debug("Failed to update spinner", "error", err)
			}
		}
	}
}

// Stop clears the spinner. It is safe to call more than once.
func (s *FetchSpinner) Stop() {
	select {
	case <-s.done:
		return
	default:
		close(s.done)
	}
	if err := s.bar.Finish(); err != nil {
		slog.Debug("Failed to clear spinner", "error", err)
	}
}
