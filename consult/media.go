package consult

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lawdesk/models"
)

// Track kinds.
const (
	KindAudio = "audio"
	KindVideo = "video"
)

var (
	ErrMicrophoneUnavailable = errors.New("microphone unavailable")
	ErrAlreadyJoined         = errors.New("media session already joined")
	ErrNotJoined             = errors.New("media session not joined")
	ErrNoCamera              = errors.New("no camera track")
	ErrNoCredentials         = errors.New("media credentials missing")
)

// Track is a local capture track.
type Track interface {
	Kind() string
	SetEnabled(enabled bool) error
	Enabled() bool
	Stop()
}

// Devices acquires local capture tracks.
type Devices interface {
	Microphone(ctx context.Context) (Track, error)
	Camera(ctx context.Context) (Track, error)
}

// Room is the managed media room.
type Room interface {
	Join(ctx context.Context, creds models.MediaCredentials) error
	Publish(ctx context.Context, tracks ...Track) error
	Leave(ctx context.Context) error
}

// RemoteParticipant is what a remote uid currently publishes.
type RemoteParticipant struct {
	UID   string
	Audio bool
	Video bool
}

type mediaState int

const (
	mediaIdle mediaState = iota
	mediaJoining
	mediaJoined
)

// MediaController runs the local side of one call or video session. The Room
// reports remote activity through the User* methods.
type MediaController struct {
	devices Devices
	room    Room
	mode    string
	creds   *models.MediaCredentials

	mu       sync.Mutex
	state    mediaState
	mic      Track
	cam      Track
	remotes  map[string]*RemoteParticipant
	warnings []string
}

func NewMediaController(devices Devices, room Room, mode string, creds *models.MediaCredentials) *MediaController {
	return &MediaController{
		devices: devices,
		room:    room,
		mode:    mode,
		creds:   creds,
		remotes: make(map[string]*RemoteParticipant),
	}
}

// Join acquires the microphone, and the camera for video sessions, then joins
// the room and publishes. A missing camera degrades the session to audio only.
func (m *MediaController) Join(ctx context.Context) error {
	m.mu.Lock()
	if m.state != mediaIdle {
		m.mu.Unlock()
		return ErrAlreadyJoined
	}
	if m.creds == nil {
		m.mu.Unlock()
		return ErrNoCredentials
	}
	m.state = mediaJoining
	m.mu.Unlock()

	mic, err := m.devices.Microphone(ctx)
	if err != nil {
		m.reset()
		return fmt.Errorf("%w: %v", ErrMicrophoneUnavailable, err)
	}
	tracks := []Track{mic}

	var cam Track
	var warning string
	if m.mode == models.ModeVideo {
		cam, err = m.devices.Camera(ctx)
		if err != nil {
			cam = nil
			warning = "camera unavailable, continuing with audio only: " + err.Error()
		} else {
			tracks = append(tracks, cam)
		}
	}

	if err := m.room.Join(ctx, *m.creds); err != nil {
		stopAll(tracks)
		m.reset()
		return fmt.Errorf("join media room: %w", err)
	}
	if err := m.room.Publish(ctx, tracks...); err != nil {
		_ = m.room.Leave(ctx)
		stopAll(tracks)
		m.reset()
		return fmt.Errorf("publish tracks: %w", err)
	}

	m.mu.Lock()
	m.mic, m.cam = mic, cam
	if warning != "" {
		m.warnings = append(m.warnings, warning)
	}
	m.state = mediaJoined
	m.mu.Unlock()
	return nil
}

func (m *MediaController) reset() {
	m.mu.Lock()
	m.state = mediaIdle
	m.mu.Unlock()
}

func stopAll(tracks []Track) {
	for _, t := range tracks {
		if t != nil {
			t.Stop()
		}
	}
}

// Leave releases every local track and exits the room. Calling it again, or
// before Join, does nothing.
func (m *MediaController) Leave(ctx context.Context) error {
	m.mu.Lock()
	if m.state != mediaJoined {
		m.mu.Unlock()
		return nil
	}
	tracks := []Track{m.mic, m.cam}
	m.mic, m.cam = nil, nil
	m.remotes = make(map[string]*RemoteParticipant)
	m.state = mediaIdle
	m.creds = nil
	m.mu.Unlock()

	stopAll(tracks)
	return m.room.Leave(ctx)
}

// ToggleAudio flips the microphone and returns whether it is now enabled.
func (m *MediaController) ToggleAudio() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mic == nil {
		return false, ErrNotJoined
	}
	next := !m.mic.Enabled()
	if err := m.mic.SetEnabled(next); err != nil {
		return !next, err
	}
	return next, nil
}

// ToggleVideo flips the camera and returns whether it is now enabled.
func (m *MediaController) ToggleVideo() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != mediaJoined {
		return false, ErrNotJoined
	}
	if m.cam == nil {
		return false, ErrNoCamera
	}
	next := !m.cam.Enabled()
	if err := m.cam.SetEnabled(next); err != nil {
		return !next, err
	}
	return next, nil
}

// Joined reports whether the controller is in the room.
func (m *MediaController) Joined() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == mediaJoined
}

// AudioOnly reports whether a joined session publishes no camera.
func (m *MediaController) AudioOnly() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == mediaJoined && m.cam == nil
}

func (m *MediaController) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.warnings...)
}

// Remotes returns a snapshot of the remote participants.
func (m *MediaController) Remotes() map[string]RemoteParticipant {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]RemoteParticipant, len(m.remotes))
	for uid, p := range m.remotes {
		out[uid] = *p
	}
	return out
}

func (m *MediaController) remote(uid string) *RemoteParticipant {
	p, ok := m.remotes[uid]
	if !ok {
		p = &RemoteParticipant{UID: uid}
		m.remotes[uid] = p
	}
	return p
}

func (m *MediaController) UserJoined(uid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == mediaJoined {
		m.remote(uid)
	}
}

func (m *MediaController) UserPublished(uid, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != mediaJoined {
		return
	}
	p := m.remote(uid)
	switch kind {
	case KindAudio:
		p.Audio = true
	case KindVideo:
		p.Video = true
	}
}

func (m *MediaController) UserUnpublished(uid, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.remotes[uid]
	if !ok {
		return
	}
	switch kind {
	case KindAudio:
		p.Audio = false
	case KindVideo:
		p.Video = false
	}
	if !p.Audio && !p.Video {
		delete(m.remotes, uid)
	}
}

func (m *MediaController) UserLeft(uid string) {
	m.mu.Lock()
	delete(m.remotes, uid)
	m.mu.Unlock()
}
