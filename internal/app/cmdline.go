package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/llehouerou/tides/internal/playlist"
)

var errUsage = errors.New("usage")

// runCommand executes one command bar line and leaves its outcome in the
// status message.
func (m *Model) runCommand(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	name, args := fields[0], fields[1:]

	var err error
	switch name {
	case "sleep":
		err = m.cmdSleep(args)
	case "vol", "volume":
		err = m.cmdVolume(args)
	case "seek":
		err = m.cmdSeek(args)
	case "fade", "crossfade":
		err = m.cmdFade(args)
	case "norm":
		err = m.cmdNorm(args)
	case "restore":
		err = m.cmdRestore(args)
	case "retry":
		m.Playback.RetryPlayback()
		m.setMessage("Retrying")
	case "add":
		err = m.cmdAdd(args)
	case "clear":
		m.Playback.ClearQueue()
		m.setMessage("Queue cleared")
	default:
		m.setError(fmt.Sprintf("Unknown command %q", name))
		return
	}
	if err != nil {
		m.setError(fmt.Sprintf("%s: %v", name, err))
	}
}

func oneArg(args []string) (string, error) {
	if len(args) != 1 {
		return "", errUsage
	}
	return args[0], nil
}

func (m *Model) cmdSleep(args []string) error {
	arg, err := oneArg(args)
	if err != nil {
		return err
	}
	if arg == "off" {
		m.Playback.SetSleepTimer(nil)
		m.setMessage("Sleep timer off")
		return nil
	}
	minutes, err := strconv.Atoi(arg)
	if err != nil || minutes <= 0 {
		return fmt.Errorf("invalid minutes %q", arg)
	}
	m.Playback.SetSleepTimer(&minutes)
	m.setMessage(fmt.Sprintf("Sleep in %d min", minutes))
	return nil
}

func (m *Model) cmdVolume(args []string) error {
	arg, err := oneArg(args)
	if err != nil {
		return err
	}
	percent, err := strconv.Atoi(strings.TrimSuffix(arg, "%"))
	if err != nil {
		return fmt.Errorf("invalid volume %q", arg)
	}
	m.Playback.SetVolume(float64(percent) / 100)
	m.setMessage(fmt.Sprintf("Volume %d%%", int(m.Playback.State().Volume*100+0.5)))
	return nil
}

func (m *Model) cmdSeek(args []string) error {
	arg, err := oneArg(args)
	if err != nil {
		return err
	}
	pos, err := parsePosition(arg)
	if err != nil {
		return err
	}
	m.Playback.Seek(pos.Seconds())
	return nil
}

// parsePosition accepts "90", "1:30" or "1:02:03".
func parsePosition(s string) (time.Duration, error) {
	var total int
	for part := range strings.SplitSeq(s, ":") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid position %q", s)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}

func (m *Model) cmdFade(args []string) error {
	arg, err := oneArg(args)
	if err != nil {
		return err
	}
	secs, err := strconv.Atoi(arg)
	if err != nil || secs < 0 {
		return fmt.Errorf("invalid seconds %q", arg)
	}
	m.Playback.SetCrossfade(time.Duration(secs) * time.Second)
	m.setMessage(fmt.Sprintf("Crossfade %ds", secs))
	return nil
}

func (m *Model) cmdNorm(args []string) error {
	arg, err := oneArg(args)
	if err != nil {
		return err
	}
	switch arg {
	case "on":
		m.Playback.SetVolumeNormalization(true)
	case "off":
		m.Playback.SetVolumeNormalization(false)
	default:
		return errUsage
	}
	m.setMessage("Normalization " + arg)
	return nil
}

func (m *Model) cmdRestore(args []string) error {
	n := 1
	if len(args) > 0 {
		var err error
		if n, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}
	}
	m.restoreQueue(n)
	return nil
}

// cmdAdd queues a track by backend id; the rest of the line is its title.
func (m *Model) cmdAdd(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	t := playlist.Track{ID: args[0], Name: args[0]}
	if len(args) > 1 {
		t.Name = strings.Join(args[1:], " ")
	}
	m.Playback.AddToQueue(t)
	m.setMessage("Added " + t.Name)
	return nil
}
