package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

type PlayerState int

const (
	StateStopped PlayerState = iota
	StatePlaying
	StatePaused
)

func (s PlayerState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

var ErrNotRunning = errors.New("mpv is not running")

// Progress is published about once a second while an episode is loaded.
type Progress struct {
	Position time.Duration
	Duration time.Duration
}

type mpvCommand struct {
	Command   []interface{} `json:"command"`
	RequestID int           `json:"request_id,omitempty"`
}

type mpvResponse struct {
	Data      interface{} `json:"data"`
	RequestID int         `json:"request_id"`
	Error     string      `json:"error"`
}

type mpvEvent struct {
	Event  string `json:"event"`
	Reason string `json:"reason,omitempty"`
}

// MPV drives an mpv process in idle mode over its JSON IPC socket.
type MPV struct {
	binary     string
	socketPath string

	mu       sync.Mutex
	cmd      *exec.Cmd
	state    PlayerState
	url      string
	position time.Duration
	duration time.Duration
	loop     bool

	progressCh chan Progress
	endedCh    chan struct{}
	stopCh     chan struct{}
	eventConn  net.Conn
}

// NewMPV prepares an mpv backend. An empty socketPath picks one under the
// temp dir keyed by pid.
func NewMPV(binary, socketPath string) *MPV {
	if binary == "" {
		binary = "mpv"
	}
	if socketPath == "" {
		socketPath = fmt.Sprintf("%s/podcastr-mpv-%d.sock", os.TempDir(), os.Getpid())
	}
	return &MPV{
		binary:     binary,
		socketPath: socketPath,
		state:      StateStopped,
		progressCh: make(chan Progress, 1),
		endedCh:    make(chan struct{}, 1),
	}
}

// Start launches mpv idle so the first episode loads without process startup.
func (p *MPV) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return nil
	}

	os.Remove(p.socketPath)

	cmd := exec.Command(p.binary,
		"--no-video",
		"--really-quiet",
		"--no-terminal",
		fmt.Sprintf("--input-ipc-server=%s", p.socketPath),
		"--idle",
		"--force-window=no",
		"--keep-open=no",
	)
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "failed to start mpv")
	}

	socketReady := false
	for i := 0; i < 20; i++ {
		if _, err := os.Stat(p.socketPath); err == nil {
			socketReady = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !socketReady {
		cmd.Process.Kill()
		cmd.Wait()
		return errors.Newf("mpv socket %s not created after timeout", p.socketPath)
	}

	p.cmd = cmd
	p.stopCh = make(chan struct{})

	if err := p.startEventListener(); err != nil {
		zlog.Warn().Err(err).Msg("mpv event listener unavailable, episode completion will not be reported")
	}
	go p.watchProgress(p.stopCh)

	zlog.Info().Str("socket", p.socketPath).Int("pid", cmd.Process.Pid).Msg("mpv started in idle mode")
	return nil
}

// Play loads url, replacing whatever is playing, and unpauses.
func (p *MPV) Play(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil {
		return ErrNotRunning
	}

	if _, err := p.sendCommand(mpvCommand{Command: []interface{}{"loadfile", url, "replace"}}); err != nil {
		return errors.Wrapf(err, "failed to load %s", url)
	}
	if _, err := p.sendCommand(mpvCommand{Command: []interface{}{"set_property", "pause", false}}); err != nil {
		zlog.Warn().Err(err).Msg("failed to unpause after loading file")
	}
	if err := p.applyLoop(); err != nil {
		zlog.Warn().Err(err).Msg("failed to apply loop after loading file")
	}

	p.url = url
	p.position = 0
	p.duration = 0
	p.state = StatePlaying
	zlog.Debug().Str("url", url).Msg("mpv loaded episode")
	return nil
}

func (p *MPV) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePlaying {
		return nil
	}
	if _, err := p.sendCommand(mpvCommand{Command: []interface{}{"set_property", "pause", true}}); err != nil {
		return errors.Wrap(err, "failed to pause")
	}
	p.state = StatePaused
	return nil
}

func (p *MPV) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePaused {
		return nil
	}
	if _, err := p.sendCommand(mpvCommand{Command: []interface{}{"set_property", "pause", false}}); err != nil {
		return errors.Wrap(err, "failed to resume")
	}
	p.state = StatePlaying
	return nil
}

// Stop unloads the current episode but keeps mpv idle.
func (p *MPV) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateStopped {
		return nil
	}
	if _, err := p.sendCommand(mpvCommand{Command: []interface{}{"stop"}}); err != nil {
		return errors.Wrap(err, "failed to stop")
	}
	p.state = StateStopped
	p.url = ""
	p.position = 0
	p.duration = 0
	return nil
}

// SetLoop makes mpv repeat the current file until turned off.
func (p *MPV) SetLoop(loop bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.loop = loop
	if p.cmd == nil {
		return nil
	}
	return p.applyLoop()
}

func (p *MPV) applyLoop() error {
	value := "no"
	if p.loop {
		value = "inf"
	}
	if _, err := p.sendCommand(mpvCommand{Command: []interface{}{"set_property", "loop-file", value}}); err != nil {
		return errors.Wrap(err, "failed to set loop-file")
	}
	return nil
}

// Ended signals natural end of file. Stops and replacements are not reported.
func (p *MPV) Ended() <-chan struct{} {
	return p.endedCh
}

func (p *MPV) Progress() <-chan Progress {
	return p.progressCh
}

func (p *MPV) State() PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Close quits mpv, killing it if it does not exit promptly, and removes the
// socket.
func (p *MPV) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
	if p.eventConn != nil {
		p.eventConn.Close()
		p.eventConn = nil
	}

	if p.cmd != nil && p.cmd.Process != nil {
		p.sendCommand(mpvCommand{Command: []interface{}{"quit"}})

		done := make(chan error, 1)
		go func(cmd *exec.Cmd) {
			done <- cmd.Wait()
		}(p.cmd)

		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
			zlog.Warn().Int("pid", p.cmd.Process.Pid).Msg("force killing mpv")
			if err := p.cmd.Process.Kill(); err != nil {
				zlog.Error().Err(err).Msg("failed to kill mpv")
			}
			<-done
		}
	}

	for i := 0; i < 3; i++ {
		if err := os.Remove(p.socketPath); err == nil || os.IsNotExist(err) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	p.cmd = nil
	p.state = StateStopped
	p.url = ""
	zlog.Info().Msg("mpv stopped and cleaned up")
}

// sendCommand sends one command on a fresh connection. Callers hold p.mu.
func (p *MPV) sendCommand(cmd mpvCommand) (*mpvResponse, error) {
	conn, err := net.Dial("unix", p.socketPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mpv socket")
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(2 * time.Second))

	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal command")
	}
	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		return nil, errors.Wrap(err, "failed to write command")
	}

	return readResponse(bufio.NewReader(conn))
}

// readResponse skips interleaved events until a command reply arrives.
func readResponse(reader *bufio.Reader) (*mpvResponse, error) {
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return nil, errors.Wrap(err, "failed to read response")
		}

		var probe struct {
			Event string `json:"event"`
		}
		if json.Unmarshal(line, &probe) == nil && probe.Event != "" {
			continue
		}

		var response mpvResponse
		if err := json.Unmarshal(line, &response); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal response")
		}
		if response.Error != "" && response.Error != "success" {
			return &response, errors.Newf("mpv error: %s", response.Error)
		}
		return &response, nil
	}
}

func (p *MPV) watchProgress(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.state == StateStopped || p.cmd == nil {
				p.mu.Unlock()
				continue
			}
			if resp, err := p.sendCommand(mpvCommand{Command: []interface{}{"get_property", "time-pos"}}); err == nil {
				if pos, ok := resp.Data.(float64); ok && pos >= 0 {
					p.position = time.Duration(pos * float64(time.Second))
				}
			}
			if resp, err := p.sendCommand(mpvCommand{Command: []interface{}{"get_property", "duration"}}); err == nil {
				if dur, ok := resp.Data.(float64); ok && dur > 0 {
					p.duration = time.Duration(dur * float64(time.Second))
				}
			}
			progress := Progress{Position: p.position, Duration: p.duration}
			p.mu.Unlock()

			select {
			case p.progressCh <- progress:
			default:
			}
		}
	}
}

// startEventListener keeps one connection open for asynchronous events.
// Callers hold p.mu.
func (p *MPV) startEventListener() error {
	conn, err := net.Dial("unix", p.socketPath)
	if err != nil {
		return errors.Wrap(err, "failed to connect for events")
	}
	p.eventConn = conn
	go p.handleEvents(conn)
	return nil
}

func (p *MPV) handleEvents(conn net.Conn) {
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			zlog.Debug().Err(err).Msg("mpv event reader closed")
			return
		}

		var event mpvEvent
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		if event.Event != "end-file" || event.Reason != "eof" {
			continue
		}

		zlog.Debug().Msg("mpv reached end of file")
		p.mu.Lock()
		p.state = StateStopped
		if p.duration > 0 {
			p.position = p.duration
		}
		p.mu.Unlock()

		select {
		case p.endedCh <- struct{}{}:
		default:
		}
	}
}
