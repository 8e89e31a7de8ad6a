package gps

import (
	"errors"
	"fmt"
	"io"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
	logger "github.com/sirupsen/logrus"
)

const (
	readChunk         = 256
	defaultDrainTime  = 250 * time.Millisecond
	defaultDrainBytes = 4096
)

// PortConfig selects the serial device the receiver is wired to.
type PortConfig struct {
	Device   string
	BaudRate int
	// MaxDrain bounds how many bytes one DrainTo call reads, so a chatty
	// receiver cannot hold up the sampling loop.
	MaxDrain int
	// MaxDrainTime bounds how long one DrainTo call keeps reading. Each
	// read may wait up to the 100 ms inter-character timeout.
	MaxDrainTime time.Duration
}

// Port is the GPS byte stream. Reads are non-blocking: a read returns
// whatever arrived within the inter-character timeout, possibly nothing.
type Port struct {
	r         io.ReadCloser
	chunk     []byte
	maxDrain  int
	drainTime time.Duration
	now       func() time.Time
}

// OpenPort opens the serial device in non-blocking mode (8N1).
func OpenPort(cfg PortConfig) (*Port, error) {
	opts := serial.OpenOptions{
		PortName:              cfg.Device,
		BaudRate:              uint(cfg.BaudRate),
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	}

	rwc, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open gps serial %s: %w", cfg.Device, err)
	}
	logger.Infof("GPS serial port opened on %s at %d baud", cfg.Device, cfg.BaudRate)

	p := NewPort(rwc, cfg.MaxDrain)
	if cfg.MaxDrainTime > 0 {
		p.drainTime = cfg.MaxDrainTime
	}
	return p, nil
}

// NewPort wraps an already open byte stream.
func NewPort(r io.ReadCloser, maxDrain int) *Port {
	if maxDrain <= 0 {
		maxDrain = defaultDrainBytes
	}
	return &Port{
		r:         r,
		chunk:     make([]byte, readChunk),
		maxDrain:  maxDrain,
		drainTime: defaultDrainTime,
		now:       time.Now,
	}
}

// DrainTo copies the bytes currently available on the port into w and
// returns how many were copied. It stops at the byte or time bound so a
// receiver streaming without gaps cannot stretch the tick. An empty port is
// not an error.
func (p *Port) DrainTo(w io.Writer) (int, error) {
	total := 0
	start := p.now()
	for total < p.maxDrain {
		if total > 0 && p.now().Sub(start) >= p.drainTime {
			return total, nil
		}
		want := len(p.chunk)
		if rest := p.maxDrain - total; rest < want {
			want = rest
		}
		n, err := p.r.Read(p.chunk[:want])
		if n > 0 {
			if _, werr := w.Write(p.chunk[:n]); werr != nil {
				return total, fmt.Errorf("gps drain: %w", werr)
			}
			total += n
		}
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("gps read: %w", err)
		}
	}
	return total, nil
}

func (p *Port) Close() error {
	if p.r == nil {
		return nil
	}
	return p.r.Close()
}
