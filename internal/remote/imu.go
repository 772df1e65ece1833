package remote

import (
	"bufio"
	"context"
	"fmt"
	"io"
	gomath "math"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/Faultbox/relive/pkg/math"
)

// reconnectDelay is how long the feed waits before reopening a port.
const reconnectDelay = 5 * time.Second

// ParseQuaternion parses an IMU line of the form "i,j,k,real".
func ParseQuaternion(line string) (math.Quat, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 4 {
		return math.Quat{}, fmt.Errorf("expected 4 values, got %d", len(parts))
	}
	var v [4]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return math.Quat{}, fmt.Errorf("value %d: %w", i, err)
		}
		v[i] = float32(f)
	}
	q := math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}
	if q.X == 0 && q.Y == 0 && q.Z == 0 && q.W == 0 {
		return math.Quat{}, fmt.Errorf("zero quaternion")
	}
	return q.Normalize(), nil
}

// Angles converts a device orientation to the orbit azimuth and polar
// angles of a camera looking along the device's forward (-Z) axis.
func Angles(q math.Quat) (azimuth, polar float64) {
	fwd := q.Rotate(math.Vec3{Z: -1})
	// The camera sits opposite its viewing direction.
	x, y, z := -float64(fwd.X), -float64(fwd.Y), -float64(fwd.Z)
	r := gomath.Sqrt(x*x + y*y + z*z)
	if r == 0 {
		return 0, gomath.Pi / 2
	}
	return gomath.Atan2(x, z), gomath.Acos(gomath.Max(-1, gomath.Min(1, y/r)))
}

// IMU streams orientation samples from a serial device into a Target.
// Samples arriving faster than frames are coalesced to the latest.
type IMU struct {
	Port string
	Baud int

	target Target
	log    *zap.Logger
	open   func(port string, mode *serial.Mode) (io.ReadCloser, error)

	mu      sync.Mutex
	latest  math.Quat
	pending bool
}

// NewIMU creates a feed for port. log may be nil.
func NewIMU(port string, baud int, target Target, log *zap.Logger) *IMU {
	if log == nil {
		log = zap.NewNop()
	}
	return &IMU{
		Port:   port,
		Baud:   baud,
		target: target,
		log:    log,
		open: func(port string, mode *serial.Mode) (io.ReadCloser, error) {
			return serial.Open(port, mode)
		},
	}
}

// Run reads the port until ctx is cancelled, reopening it after errors.
func (m *IMU) Run(ctx context.Context) error {
	mode := &serial.Mode{BaudRate: m.Baud}
	for {
		port, err := m.open(m.Port, mode)
		if err != nil {
			m.log.Warn("opening serial port", zap.String("port", m.Port), zap.Error(err))
		} else {
			m.log.Info("serial port opened", zap.String("port", m.Port), zap.Int("baud", m.Baud))
			stop := context.AfterFunc(ctx, func() { port.Close() })
			err = m.Read(port)
			stop()
			port.Close()
			if ctx.Err() == nil {
				m.log.Warn("serial port closed, reconnecting", zap.String("port", m.Port), zap.Error(err))
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// Read consumes samples from r until it ends. Malformed lines are skipped.
func (m *IMU) Read(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		q, err := ParseQuaternion(line)
		if err != nil {
			m.log.Debug("skipping IMU line", zap.String("line", line), zap.Error(err))
			continue
		}
		m.push(q)
	}
	return sc.Err()
}

func (m *IMU) push(q math.Quat) {
	m.mu.Lock()
	m.latest = q
	schedule := !m.pending
	m.pending = true
	m.mu.Unlock()
	if schedule {
		m.target.Enqueue(m.apply)
	}
}

func (m *IMU) apply() {
	m.mu.Lock()
	q := m.latest
	m.pending = false
	m.mu.Unlock()

	az, polar := Angles(q)
	if err := m.target.SetOrientation(az, polar); err != nil {
		m.log.Debug("applying orientation", zap.Error(err))
	}
}
