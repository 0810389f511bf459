package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	einride "go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"

	"canbridge/internal/can"
)

// SocketCAN is a Linux CAN interface. Received frames go into a Queue;
// outbound frames are written with Send.
type SocketCAN struct {
	iface  string
	logger *slog.Logger

	rx net.Conn
	tx net.Conn
	t  *socketcan.Transmitter

	rxOnce  sync.Once
	rxClose error
}

// DialSocketCAN opens separate receive and transmit sockets on iface.
func DialSocketCAN(ctx context.Context, iface string, logger *slog.Logger) (*SocketCAN, error) {
	rx, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", iface, err)
	}
	tx, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		_ = rx.Close()
		return nil, fmt.Errorf("dial %s for transmit: %w", iface, err)
	}
	return &SocketCAN{
		iface:  iface,
		logger: logger,
		rx:     rx,
		tx:     tx,
		t:      socketcan.NewTransmitter(tx),
	}, nil
}

// Run reads frames into q until ctx is cancelled or the socket fails. Error
// and remote frames are skipped.
func (s *SocketCAN) Run(ctx context.Context, q *Queue) error {
	go func() {
		<-ctx.Done()
		_ = s.closeRx()
	}()

	s.logger.Info("socketcan receiver started", "interface", s.iface)
	recv := socketcan.NewReceiver(s.rx)
	for recv.Receive() {
		if recv.HasErrorFrame() {
			s.logger.Warn("can error frame", "interface", s.iface, "code", recv.ErrorFrame().ErrorClass)
			continue
		}
		ef := recv.Frame()
		if ef.IsRemote {
			continue
		}
		if err := q.Push(fromEinride(ef)); err != nil {
			return err
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := recv.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("receive on %s: %w", s.iface, err)
	}
	return nil
}

func (s *SocketCAN) Send(ctx context.Context, f can.Frame) error {
	if err := s.t.TransmitFrame(ctx, toEinride(f)); err != nil {
		return fmt.Errorf("transmit %s: %w", f, err)
	}
	return nil
}

// Close releases both sockets. The receive socket may already have been
// closed by Run on cancellation.
func (s *SocketCAN) Close() error {
	return errors.Join(s.closeRx(), s.tx.Close())
}

func (s *SocketCAN) closeRx() error {
	s.rxOnce.Do(func() { s.rxClose = s.rx.Close() })
	return s.rxClose
}

func fromEinride(ef einride.Frame) can.Frame {
	f := can.Frame{ID: ef.ID, Extended: ef.IsExtended, Len: ef.Length}
	if f.Len > can.MaxDataLen {
		f.Len = can.MaxDataLen
	}
	copy(f.Data[:], ef.Data[:])
	return f
}

func toEinride(f can.Frame) einride.Frame {
	ef := einride.Frame{ID: f.ID, IsExtended: f.Extended, Length: f.Len}
	copy(ef.Data[:], f.Data[:])
	return ef
}
