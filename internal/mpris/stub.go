//go:build !linux

package mpris

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tides/internal/playback"
)

// ErrUnsupported is returned by New where no session bus exists.
var ErrUnsupported = errors.New("mpris: session bus only available on linux")

type Adapter struct{}

func New(playback.Service, logrus.FieldLogger) (*Adapter, error) {
	return nil, ErrUnsupported
}

func (*Adapter) Close() error { return nil }
