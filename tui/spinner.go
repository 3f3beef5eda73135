package tui

import (
	"context"
	"sync"

	"github.com/charmbracelet/huh/spinner"
)

var (
	spinnerMu          sync.Mutex
	currentSpinnerDone context.CancelFunc
)

// ShowSpinner displays a spinner while action runs and returns its error.
// Without a terminal the action runs directly.
func ShowSpinner(ctx context.Context, title string, action func(ctx context.Context) error) error {
	if !HasTTY {
		return action(ctx)
	}
	CancelSpinner()
	spinCtx, done := context.WithCancel(ctx)
	spinnerMu.Lock()
	currentSpinnerDone = done
	spinnerMu.Unlock()
	defer CancelSpinner()

	var (
		wg  sync.WaitGroup
		err error
	)
	wg.Add(1)
	runErr := spinner.New().
		Context(spinCtx).
		Title(title).
		Action(func() {
			defer wg.Done()
			err = action(spinCtx)
		}).
		Run()
	wg.Wait()
	if err != nil {
		return err
	}
	return runErr
}

// CancelSpinner cancels the current spinner
func CancelSpinner() {
	spinnerMu.Lock()
	defer spinnerMu.Unlock()
	if currentSpinnerDone != nil {
		currentSpinnerDone()
		currentSpinnerDone = nil
	}
}

// Load runs fetch under a spinner and returns its result.
func Load[T any](ctx context.Context, title string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := ShowSpinner(ctx, title, func(ctx context.Context) error {
		var err error
		out, err = fetch(ctx)
		return err
	})
	return out, err
}
