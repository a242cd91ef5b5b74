package main

import (
	"context"
	"log"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/klog/v2"
)

const defaultLogFlushFrequency = 5 * time.Second

// stdLogToKlog routes output of the standard log package to klog
type stdLogToKlog struct{}

// Write implements the io.Writer interface.
func (stdLogToKlog) Write(data []byte) (int, error) {
	klog.InfoDepth(1, strings.TrimSuffix(string(data), "\n"))
	return len(data), nil
}

// setupLogging bridges the standard logger to klog and flushes klog every
// flushFreq until ctx is done. A zero flushFreq leaves flushing to exit.
func setupLogging(ctx context.Context, flushFreq time.Duration) {
	log.SetOutput(stdLogToKlog{})
	log.SetFlags(0)
	if flushFreq > 0 {
		go wait.Until(klog.Flush, flushFreq, ctx.Done())
	}
}
