package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"canbridge/internal/bus"
	"canbridge/internal/db"
)

func captureCommand(c *cli.Context) error {
	iface := c.String("interface")
	out := c.String("out")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if d := c.Duration("duration"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	logger := slog.Default()
	conn, err := db.Open(db.Options{Path: out, Logger: logger})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn, logger); err != nil {
		return err
	}
	repo := db.NewCaptureRepository(conn)
	if err := repo.SetMeta(ctx, "interface", iface); err != nil {
		return err
	}
	if err := repo.SetMeta(ctx, "started_at", time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}

	sc, err := bus.DialSocketCAN(ctx, iface, logger)
	if err != nil {
		return err
	}
	defer sc.Close()

	q := bus.NewQueue(0)
	defer q.Close()
	rxErr := make(chan error, 1)
	go func() { rxErr <- sc.Run(ctx, q) }()

	n, err := record(ctx, q, bus.NewRecorder(repo), rxErr)
	logger.Info("capture finished", "frames", n, "file", out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// record drains q into rec until ctx ends or the reader fails.
func record(ctx context.Context, q *bus.Queue, rec *bus.Recorder, rxErr <-chan error) (int, error) {
	t := time.NewTicker(5 * time.Millisecond)
	defer t.Stop()

	n := 0
	drain := func() error {
		for {
			f, ok := q.Pop()
			if !ok {
				return nil
			}
			// Recording must outlive ctx so the tail is not lost.
			if err := rec.Record(context.WithoutCancel(ctx), f); err != nil {
				return err
			}
			n++
		}
	}

	for {
		select {
		case <-ctx.Done():
			return n, errors.Join(drain(), ctx.Err())
		case err := <-rxErr:
			return n, errors.Join(drain(), err)
		case <-t.C:
			if err := drain(); err != nil {
				return n, err
			}
		}
	}
}

func dumpCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("usage: canctl dump <capture.db>", 2)
	}
	conn, err := db.Open(db.Options{Path: c.Args().First(), ReadOnly: true, Logger: slog.Default()})
	if err != nil {
		return err
	}
	defer conn.Close()

	return dump(context.Background(), os.Stdout, db.NewCaptureRepository(conn), c.Bool("decode"))
}

func dump(ctx context.Context, w io.Writer, repo db.CaptureRepository, decode bool) error {
	if iface, ok, err := repo.Meta(ctx, "interface"); err != nil {
		return err
	} else if ok {
		fmt.Fprintf(w, "# interface %s\n", iface)
	}

	frames, err := repo.Frames(ctx)
	if err != nil {
		return err
	}
	for _, cf := range frames {
		line := fmt.Sprintf("(%010.6f) %s", cf.Offset.Seconds(), candump(cf.Frame))
		if decode {
			line += "  " + describe(cf)
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func describe(cf db.CapturedFrame) string {
	if cf.Frame.Extended {
		d, err := decodeN2K(cf.Frame)
		if err != nil {
			return ""
		}
		if d.Fields == nil {
			return d.PGN
		}
		return fmt.Sprintf("%s %+v", d.PGN, d.Fields)
	}
	d, err := decodeMessage(cf.Frame)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s %+v", d.Kind, d.Message)
}
