package utils

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// PathExists returns true if path exists in the system or false if it doesnt
// in case of error, and error is returned
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	} else if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

var onlyOneSignalHandler = make(chan struct{})

// SetupSignalHandler returns a context which is canceled on SIGINT or SIGTERM.
// A second signal terminates the program with exit code 1.
// It may be called only once.
func SetupSignalHandler() context.Context {
	close(onlyOneSignalHandler) // panics when called twice

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, unix.SIGINT, unix.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
