// internal/playback/service_impl.go
package playback

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tides/internal/errmsg"
	"github.com/llehouerou/tides/internal/player"
	"github.com/llehouerou/tides/internal/playlist"
	"github.com/llehouerou/tides/internal/state"
)

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	mu sync.RWMutex

	player   player.Interface
	queue    *playlist.PlayingQueue
	history  *playlist.QueueHistory
	recent   *recentArtists
	resolver StreamResolver
	store    *writeBehind
	obs      Observer
	log      logrus.FieldLogger
	rng      *rand.Rand
	opts     Options

	status    Status
	progress  float64
	duration  float64
	volume    float64
	shuffle   bool
	repeat    RepeatMode
	crossfade time.Duration
	normalize bool

	// seq identifies the current load; backend events and resolutions
	// carrying another value are stale.
	seq           uint64
	endedSeq      uint64
	resolveCancel context.CancelFunc

	sleepDeadline time.Time // zero when no timer
	sleepMinutes  int

	// open is the play not yet reported as finished: the current track
	// from the moment it was announced until it is replaced or ends.
	open *playlist.Track

	listeners    *listeners[TrackPlay]
	endListeners *listeners[TrackEnd]
	subs         []*Subscription
	subsMu       sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New creates the playback engine around p, restores the persisted queue
// and settings from opts.Store, and starts its background loops.
// Nothing is loaded into p until playback is requested.
func New(p player.Interface, opts Options) Service {
	opts.withDefaults()
	var store state.Store = discardStore{}
	if opts.Store != nil {
		store = opts.Store
	}
	log := opts.Logger.WithField("component", "playback")

	ctx, cancel := context.WithCancel(context.Background())
	s := &serviceImpl{
		player:   p,
		queue:    playlist.NewQueue(),
		history:  playlist.NewQueueHistory(opts.HistorySize),
		recent:   newRecentArtists(opts.RecentArtists),
		resolver: opts.Resolver,
		store:    newWriteBehind(store, opts.SaveDelay, log),
		obs:      opts.Observer,
		log:      log,
		rng:      opts.Rand,
		opts:     opts,
		status:   idle(),
		ctx:      ctx,
		cancel:   cancel,

		listeners:    newListeners[TrackPlay](),
		endListeners: newListeners[TrackEnd](),
	}
	s.restore()

	s.wg.Add(5)
	go func() { defer s.wg.Done(); s.runEvents() }()
	go func() { defer s.wg.Done(); s.runPoller() }()
	go func() { defer s.wg.Done(); s.runSleepTimer() }()
	go func() { defer s.wg.Done(); s.listeners.run(ctx.Done()) }()
	go func() { defer s.wg.Done(); s.endListeners.run(ctx.Done()) }()
	return s
}

func (s *serviceImpl) restore() {
	q := state.LoadQueue(s.store)
	tracks, index := q.Tracks, q.Index
	if index < 0 && q.Current != nil {
		// The cursor was past the stored prefix of a long queue; the
		// current track comes back as the last entry.
		tracks = append(tracks, *q.Current)
		index = len(tracks) - 1
	}
	s.queue.Restore(tracks, index)

	settings := state.LoadSettings(s.store)
	s.volume = settings.Volume
	s.shuffle = settings.Shuffle
	s.repeat = ParseRepeatMode(settings.Repeat)
	s.crossfade = time.Duration(settings.CrossfadeSeconds) * time.Second
	s.normalize = settings.VolumeNormalization

	s.player.SetVolume(volumePercent(s.volume))
	if c, ok := s.player.(player.Crossfader); ok {
		c.SetCrossfade(s.crossfade)
	}
	if n, ok := s.player.(player.Normalizer); ok {
		n.SetNormalization(s.normalize)
	}
	s.log.WithFields(logrus.Fields{
		"tracks": s.queue.Len(),
		"index":  s.queue.CurrentIndex(),
	}).Debug("restored player state")
}

// State returns a snapshot of the engine.
func (s *serviceImpl) State() PlayerState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := PlayerState{
		Queue:               s.queue.Tracks(),
		QueueIndex:          s.queue.CurrentIndex(),
		Status:              s.status,
		IsPlaying:           s.status.IsPlaying(),
		IsBuffering:         s.status.IsBuffering(),
		PlaybackError:       s.status.Error(),
		Progress:            s.progress,
		Duration:            s.duration,
		Volume:              s.volume,
		Shuffle:             s.shuffle,
		Repeat:              s.repeat,
		Crossfade:           s.crossfade,
		VolumeNormalization: s.normalize,
	}
	st.CurrentTrack = s.currentCopyLocked()
	if !s.sleepDeadline.IsZero() {
		m := s.sleepMinutes
		st.SleepMinutes = &m
	}
	return st
}

// Play replaces the queue and starts track. With no queue the track plays
// alone. If track is missing from queue it is put in front of it.
// A non-empty previous queue is saved to the queue history.
func (s *serviceImpl) Play(track playlist.Track, queue ...playlist.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if !s.queue.IsEmpty() {
		s.history.Push(s.queue.Tracks(), s.queue.CurrentIndex(), time.Now())
	}
	prev, prevIndex, elapsed := s.outgoingLocked()
	s.queue.Replace(track, queue)
	s.beginTrackLocked(prev, prevIndex, elapsed)
}

func (s *serviceImpl) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pauseLocked()
}

func (s *serviceImpl) pauseLocked() {
	if s.queue.Current() == nil {
		return
	}
	s.player.Pause()
	if s.status.IsPlaying() {
		s.setStatusLocked(Status{Kind: StatusPaused})
	}
}

// Resume continues a paused track. A track that is not loaded (restored at
// startup, finished, or failed) is loaded again from the start.
func (s *serviceImpl) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.resumeLocked()
}

func (s *serviceImpl) resumeLocked() {
	if s.queue.Current() == nil {
		return
	}
	switch s.status.Kind {
	case StatusPaused:
		s.player.Play()
		s.setStatusLocked(Status{Kind: StatusPlaying})
	case StatusIdle, StatusErrored:
		s.reopenLocked()
		s.loadCurrentLocked()
	}
}

func (s *serviceImpl) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.status.IsPlaying() {
		s.pauseLocked()
		return
	}
	s.resumeLocked()
}

// Seek moves the play head. Progress is updated right away and corrected
// by the next poll.
func (s *serviceImpl) Seek(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.queue.Current() == nil {
		return
	}
	seconds = max(0, seconds)
	if s.duration > 0 {
		seconds = min(seconds, s.duration)
	}
	s.player.SeekTo(seconds)
	s.progress = seconds
	s.publishPositionLocked()
}

func (s *serviceImpl) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.advanceLocked(false)
}

// advanceLocked picks the track after the current one. natural is true when
// the backend reported the end of the track.
func (s *serviceImpl) advanceLocked(natural bool) {
	n := s.queue.Len()
	if n == 0 {
		return
	}

	if s.repeat == RepeatOne {
		s.restartLocked()
		return
	}

	cur := s.queue.CurrentIndex()
	next := cur + 1
	if s.shuffle {
		next = pickShuffle(s.queue.Tracks(), cur, s.recent, s.rng)
		if next < 0 {
			next = n
		}
	}

	if next >= n {
		if s.repeat != RepeatAll {
			s.stopAtEndLocked(natural)
			return
		}
		next = 0
	}
	s.switchToLocked(next)
}

// restartLocked replays the current track from the start.
func (s *serviceImpl) restartLocked() {
	if s.queue.Current() == nil {
		return
	}
	if s.status.Kind == StatusErrored || s.status.Kind == StatusIdle {
		s.reopenLocked()
		s.loadCurrentLocked()
		return
	}
	// a restarted track may end again with the same load sequence
	s.endedSeq = 0
	s.player.SeekTo(0)
	s.player.Play()
	s.progress = 0
	s.setStatusLocked(Status{Kind: StatusPlaying})
	s.publishPositionLocked()
}

// stopAtEndLocked keeps the last track current but stops playing.
func (s *serviceImpl) stopAtEndLocked(natural bool) {
	if natural {
		s.endPlayLocked(max(s.progress, s.duration))
		s.setStatusLocked(idle())
		return
	}
	s.pauseLocked()
}

// Previous moves back one track; from the first track it wraps to the last
// when repeat is all, otherwise it restarts the first track.
func (s *serviceImpl) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	n := s.queue.Len()
	if n == 0 {
		return
	}
	cur := s.queue.CurrentIndex()
	idx := cur - 1
	if cur <= 0 {
		idx = 0
		if cur == 0 && s.repeat == RepeatAll {
			idx = n - 1
		}
	}
	s.switchToLocked(idx)
}

// PlayAt plays the queue entry at index. Out-of-range indices are ignored.
func (s *serviceImpl) PlayAt(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || index < 0 || index >= s.queue.Len() {
		return
	}
	s.switchToLocked(index)
}

// RetryPlayback loads the current track again, leaving the queue alone.
func (s *serviceImpl) RetryPlayback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	t := s.queue.Current()
	if t == nil {
		return
	}
	if f, ok := s.resolver.(Forgetter); ok {
		f.Forget(t.ID)
	}
	s.reopenLocked()
	s.loadCurrentLocked()
}

func (s *serviceImpl) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if math.IsNaN(v) {
		return
	}
	v = max(0, min(1, v))
	s.volume = v
	s.player.SetVolume(volumePercent(v))
	s.persistLocked(state.SaveVolume(s.store, v))
}

func (s *serviceImpl) ToggleShuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.shuffle
	}
	s.shuffle = !s.shuffle
	s.persistLocked(state.SaveShuffle(s.store, s.shuffle))
	s.publishModeLocked()
	return s.shuffle
}

func (s *serviceImpl) ToggleRepeat() RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.repeat
	}
	s.repeat = s.repeat.Next()
	s.persistLocked(state.SaveRepeat(s.store, s.repeat.String()))
	s.publishModeLocked()
	return s.repeat
}

// SetCrossfade stores the crossfade duration, rounded down to whole seconds.
func (s *serviceImpl) SetCrossfade(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	d = max(0, d).Truncate(time.Second)
	s.crossfade = d
	if c, ok := s.player.(player.Crossfader); ok {
		c.SetCrossfade(d)
	}
	s.persistLocked(state.SaveCrossfade(s.store, int(d/time.Second)))
}

func (s *serviceImpl) SetVolumeNormalization(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.normalize = enabled
	if n, ok := s.player.(player.Normalizer); ok {
		n.SetNormalization(enabled)
	}
	s.persistLocked(state.SaveVolumeNormalization(s.store, enabled))
}

// SetSleepTimer pauses playback once minutes have elapsed. A nil or
// non-positive value cancels the timer; a new value replaces the old one.
func (s *serviceImpl) SetSleepTimer(minutes *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if minutes == nil || *minutes <= 0 {
		s.sleepDeadline = time.Time{}
		s.sleepMinutes = 0
		return
	}
	s.sleepDeadline = time.Now().Add(time.Duration(*minutes) * time.Minute)
	s.sleepMinutes = *minutes
}

func (s *serviceImpl) AddToQueue(track playlist.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue.Add(track)
	s.queueChangedLocked()
}

func (s *serviceImpl) PlayNext(track playlist.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue.InsertNext(track)
	s.queueChangedLocked()
}

// RemoveFromQueue removes the entry at index. Removing the current entry
// is a no-op.
func (s *serviceImpl) RemoveFromQueue(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.queue.RemoveAt(index) {
		s.queueChangedLocked()
	}
}

func (s *serviceImpl) ReorderQueue(from, to int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.queue.Move(from, to) {
		s.queueChangedLocked()
	}
}

// ClearQueue keeps only the current track.
func (s *serviceImpl) ClearQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue.CollapseToCurrent()
	s.queueChangedLocked()
}

// QueueHistory returns saved queues, newest first.
func (s *serviceImpl) QueueHistory() []playlist.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Entries()
}

// RestoreQueue swaps in the saved queue with the given id and plays its
// current track. The replaced queue is saved in turn.
func (s *serviceImpl) RestoreQueue(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	entry, ok := s.history.Take(id)
	if !ok {
		return false
	}
	if !s.queue.IsEmpty() {
		s.history.Push(s.queue.Tracks(), s.queue.CurrentIndex(), time.Now())
	}
	prev, prevIndex, elapsed := s.outgoingLocked()
	s.queue.Restore(entry.Tracks, entry.Index)
	if s.queue.Current() == nil {
		if prev != nil {
			s.player.Pause()
		}
		s.endPlayLocked(elapsed)
		s.progress, s.duration = 0, 0
		s.setStatusLocked(idle())
		s.queueChangedLocked()
		return true
	}
	s.beginTrackLocked(prev, prevIndex, elapsed)
	return true
}

// OnTrackPlay registers fn to be called, in order, each time a track
// becomes current. The returned function unregisters it and is safe to
// call from inside fn.
func (s *serviceImpl) OnTrackPlay(fn func(TrackPlay)) func() {
	return s.listeners.add(fn)
}

// OnTrackEnd registers fn to be called when a play finishes without a
// successor. Together with TrackPlay.Previous every play is reported
// exactly once.
func (s *serviceImpl) OnTrackEnd(fn func(TrackEnd)) func() {
	return s.endListeners.add(fn)
}

// Subscribe creates a new event subscription.
func (s *serviceImpl) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// Close stops the background loops, flushes pending writes and closes
// subscriptions. The player itself is left to its owner.
func (s *serviceImpl) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.resolveCancel != nil {
		s.resolveCancel()
	}
	s.endPlayLocked(s.progress)
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.store.Flush()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	return nil
}

// switchToLocked moves the cursor to index and plays that track.
func (s *serviceImpl) switchToLocked(index int) {
	prev, prevIndex, elapsed := s.outgoingLocked()
	if s.queue.JumpTo(index) == nil {
		return
	}
	s.beginTrackLocked(prev, prevIndex, elapsed)
}

// beginTrackLocked announces the track under the cursor and loads it.
func (s *serviceImpl) beginTrackLocked(prev *playlist.Track, prevIndex int, elapsed float64) {
	cur := s.currentCopyLocked()
	if cur == nil {
		return
	}
	s.recent.push(cur.ArtistID)
	s.loadCurrentLocked()
	s.obs.TrackStarted()

	index := s.queue.CurrentIndex()
	s.publish(func(sub *Subscription) {
		offer(sub.feeds.track, TrackChange{Previous: prev, Current: cur, PreviousIndex: prevIndex, Index: index})
	})
	s.queueChangedLocked()

	tp := TrackPlay{Track: *cur, At: time.Now()}
	if s.open != nil {
		tp.Previous = s.open
		tp.PreviousElapsed = toDuration(elapsed)
	}
	s.open = cur
	s.listeners.enqueue(tp)
}

// reopenLocked announces the current track again when it starts over after
// its play was already reported as finished, or was never announced
// (restored at startup).
func (s *serviceImpl) reopenLocked() {
	if s.open != nil {
		return
	}
	cur := s.currentCopyLocked()
	if cur == nil {
		return
	}
	s.open = cur
	s.listeners.enqueue(TrackPlay{Track: *cur, At: time.Now()})
}

// endPlayLocked reports the open play as finished after elapsed seconds.
func (s *serviceImpl) endPlayLocked(elapsed float64) {
	if s.open == nil {
		return
	}
	s.endListeners.enqueue(TrackEnd{Track: *s.open, At: time.Now(), Elapsed: toDuration(elapsed)})
	s.open = nil
}

// loadCurrentLocked starts loading the current track, superseding any
// load in flight.
func (s *serviceImpl) loadCurrentLocked() {
	t := s.queue.Current()
	if t == nil {
		return
	}
	if s.resolveCancel != nil {
		s.resolveCancel()
		s.resolveCancel = nil
	}
	s.seq++
	seq := s.seq
	s.progress, s.duration = 0, 0
	s.setStatusLocked(Status{Kind: StatusLoading})
	s.publishPositionLocked()

	if t.Audio != "" || s.resolver == nil {
		s.player.Load(player.LoadRequest{Seq: seq, TrackID: t.ID, URL: t.Audio})
		s.prefetchNextLocked()
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	s.resolveCancel = cancel
	id := t.ID
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.resolve(ctx, seq, id)
	}()
}

func (s *serviceImpl) resolve(ctx context.Context, seq uint64, trackID string) {
	url, err := s.resolver.Resolve(ctx, trackID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.seq != seq {
		s.log.WithField("track", trackID).Debug("dropping stale stream resolution")
		return
	}
	s.resolveCancel = nil
	if err != nil {
		s.failLocked("resolve", trackID, errmsg.MsgTrackUnavailable, err)
		return
	}
	s.player.Load(player.LoadRequest{Seq: seq, TrackID: trackID, URL: url})
	s.prefetchNextLocked()
}

// prefetchNextLocked warms the resolver for the track that would play next
// without shuffle.
func (s *serviceImpl) prefetchNextLocked() {
	p, ok := s.resolver.(Prefetcher)
	if !ok || s.shuffle {
		return
	}
	next := s.queue.CurrentIndex() + 1
	if next >= s.queue.Len() && s.repeat == RepeatAll {
		next = 0
	}
	if t := s.queue.Track(next); t != nil && t.Audio == "" {
		p.Prefetch(t.ID)
	}
}

func (s *serviceImpl) failLocked(op, trackID, msg string, err error) {
	s.setStatusLocked(errored(msg))
	s.obs.PlaybackFailed()
	entry := s.log.WithFields(logrus.Fields{"track": trackID, "op": op})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn(msg)
	s.publish(func(sub *Subscription) {
		offer(sub.feeds.err, ErrorEvent{Operation: op, TrackID: trackID, Message: msg, Err: err})
	})
}

func (s *serviceImpl) setStatusLocked(st Status) {
	if st == s.status {
		return
	}
	prev := s.status
	s.status = st
	s.publish(func(sub *Subscription) {
		offer(sub.feeds.state, StateChange{Previous: prev, Current: st})
	})
}

func (s *serviceImpl) queueChangedLocked() {
	tracks := s.queue.Tracks()
	index := s.queue.CurrentIndex()
	s.publish(func(sub *Subscription) {
		offer(sub.feeds.queue, QueueChange{Tracks: tracks, Index: index})
	})
	s.persistLocked(state.SaveQueue(s.store, state.QueueState{
		Tracks:  tracks,
		Index:   index,
		Current: s.currentCopyLocked(),
	}))
}

// persistLocked logs a failed write. Writes never fail an operation.
func (s *serviceImpl) persistLocked(err error) {
	if err != nil {
		s.log.WithError(err).Debug("persisting player state failed")
	}
}

func (s *serviceImpl) publishModeLocked() {
	e := ModeChange{Repeat: s.repeat, Shuffle: s.shuffle}
	s.publish(func(sub *Subscription) { offer(sub.feeds.mode, e) })
}

func (s *serviceImpl) publishPositionLocked() {
	e := PositionChange{Progress: s.progress, Duration: s.duration}
	s.publish(func(sub *Subscription) { offer(sub.feeds.position, e) })
}

func (s *serviceImpl) publish(fn func(*Subscription)) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		fn(sub)
	}
}

func (s *serviceImpl) currentCopyLocked() *playlist.Track {
	t := s.queue.Current()
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// outgoingLocked captures the track about to be replaced.
func (s *serviceImpl) outgoingLocked() (*playlist.Track, int, float64) {
	return s.currentCopyLocked(), s.queue.CurrentIndex(), s.progress
}

func toDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func volumePercent(v float64) int {
	return int(math.Round(v * 100))
}
