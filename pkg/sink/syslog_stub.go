//go:build windows || plan9

package sink

import "errors"

func init() {
	Register(KindSyslog, func(*Config) (Sink, error) {
		return nil, errors.New("syslog sink is not supported on this platform")
	})
}
