// Package netns runs functions inside another network namespace.
package netns

import (
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/vishvananda/netns"
	"k8s.io/klog/v2"
)

// Handle opens the namespace identified by nsRef. A reference containing a
// path separator is a namespace file, anything else is a name below
// /var/run/netns.
func Handle(nsRef string) (netns.NsHandle, error) {
	if strings.Contains(nsRef, "/") {
		return netns.GetFromPath(nsRef)
	}
	return netns.GetFromName(nsRef)
}

// Do runs fn with the calling goroutine locked inside the network namespace
// nsRef. An empty nsRef runs fn in the current namespace.
func Do(nsRef string, fn func() error) error {
	if nsRef == "" {
		return fn()
	}

	target, err := Handle(nsRef)
	if err != nil {
		return errors.Wrapf(err, "failed to open network namespace %s", nsRef)
	}
	defer target.Close()

	runtime.LockOSThread()
	orig, err := netns.Get()
	if err != nil {
		runtime.UnlockOSThread()
		return errors.Wrap(err, "failed to get current network namespace")
	}
	defer orig.Close()

	if err := netns.Set(target); err != nil {
		runtime.UnlockOSThread()
		return errors.Wrapf(err, "failed to enter network namespace %s", nsRef)
	}
	klog.V(4).Infof("entered network namespace %s", nsRef)

	defer func() {
		if err := netns.Set(orig); err != nil {
			// the thread stays locked so that the runtime discards it
			klog.Errorf("failed to restore network namespace: %v", err)
			return
		}
		runtime.UnlockOSThread()
	}()

	return fn()
}
