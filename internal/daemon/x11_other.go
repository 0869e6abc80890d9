//go:build !linux

package daemon

import "errors"

// AttachX11 is only available on linux.
func AttachX11(*Options) (func(), error) {
	return nil, errors.New("the X11 session is only supported on linux")
}
