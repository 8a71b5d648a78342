package playback

import (
	"io"
	"testing"
	"testing/synctest"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tides/internal/state"
)

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestWriteBehind_ReadsPendingValues(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		store := state.NewMock()
		w := newWriteBehind(store, time.Second, discardLogger())

		if err := w.Set("k", "v1"); err != nil {
			t.Fatal(err)
		}
		v, ok, _ := w.Get("k")
		if !ok || v != "v1" {
			t.Errorf("Get = %q, %v; want pending v1", v, ok)
		}
		if _, ok := store.Value("k"); ok {
			t.Error("value written before the delay")
		}

		time.Sleep(2 * time.Second)
		synctest.Wait()

		if v, ok := store.Value("k"); !ok || v != "v1" {
			t.Errorf("store value = %q, %v; want v1", v, ok)
		}
	})
}

func TestWriteBehind_CoalescesWrites(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		store := state.NewMock()
		w := newWriteBehind(store, 500*time.Millisecond, discardLogger())

		for _, v := range []string{"1", "2", "3"} {
			_ = w.Set("k", v)
			time.Sleep(100 * time.Millisecond)
		}
		time.Sleep(time.Second)
		synctest.Wait()

		if store.Writes() != 1 {
			t.Errorf("writes = %d, want 1", store.Writes())
		}
		if v, _ := store.Value("k"); v != "3" {
			t.Errorf("value = %q, want 3", v)
		}
	})
}

func TestWriteBehind_FailureDropsBatch(t *testing.T) {
	store := state.NewMock()
	store.FailWrites(true)
	w := newWriteBehind(store, 0, discardLogger())

	if err := w.Set("k", "v"); err != nil {
		t.Fatalf("Set should swallow store errors, got %v", err)
	}
	store.FailWrites(false)
	w.Flush()

	if _, ok := store.Value("k"); ok {
		t.Error("failed batch should not be retried")
	}
}
