//go:build linux

package mpris

import (
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tides/internal/playback"
)

// Adapter connects the playback engine to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
	events *events.EventHandler
	sub    *playback.Subscription
	log    logrus.FieldLogger
	done   chan struct{}
	exited chan struct{}
}

// New creates and starts a new MPRIS adapter.
func New(service playback.Service, log logrus.FieldLogger) (*Adapter, error) {
	a := &Adapter{
		sub:    service.Subscribe(),
		log:    log.WithField("component", "mpris"),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	a.server = server.NewServer("tides", &rootAdapter{}, &playerAdapter{service: service})
	a.events = events.NewEventHandler(a.server)

	go func() {
		if err := a.server.Listen(); err != nil {
			a.log.WithError(err).Warn("mpris server stopped")
		}
	}()
	go a.forward()

	return a, nil
}

// forward turns engine events into MPRIS property change signals.
func (a *Adapter) forward() {
	defer close(a.exited)
	for {
		var err error
		select {
		case <-a.done:
			return
		case <-a.sub.Done:
			return
		case <-a.sub.StateChanged:
			err = a.events.Player.OnPlayPause()
		case <-a.sub.TrackChanged:
			err = a.events.Player.OnTitle()
		case <-a.sub.ModeChanged:
			err = a.events.Player.OnOptions()
		case <-a.sub.QueueChanged:
			err = a.events.Player.OnOptions()
		case <-a.sub.PositionChanged:
		case <-a.sub.Error:
			err = a.events.Player.OnPlayPause()
		}
		if err != nil {
			a.log.WithError(err).Debug("emitting mpris signal failed")
		}
	}
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	close(a.done)
	<-a.exited
	return a.server.Stop()
}
