package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"canbridge/internal/can"
)

//go:embed sql/insert-frame.sql
var insertFrameSQL string

//go:embed sql/select-frames.sql
var selectFramesSQL string

//go:embed sql/count-frames.sql
var countFramesSQL string

//go:embed sql/upsert-meta.sql
var upsertMetaSQL string

//go:embed sql/select-meta.sql
var selectMetaSQL string

// CapturedFrame is a frame with its offset from the start of the capture.
type CapturedFrame struct {
	Seq    int64
	Offset time.Duration
	Frame  can.Frame
}

type CaptureRepository interface {
	Append(ctx context.Context, offset time.Duration, f can.Frame) error
	Frames(ctx context.Context) ([]CapturedFrame, error)
	Count(ctx context.Context) (int, error)
	SetMeta(ctx context.Context, key, value string) error
	Meta(ctx context.Context, key string) (string, bool, error)
}

type captureRepository struct {
	db *sql.DB
}

func NewCaptureRepository(db *sql.DB) CaptureRepository {
	return &captureRepository{db: db}
}

func (r *captureRepository) Append(ctx context.Context, offset time.Duration, f can.Frame) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("append %s: %w", f, err)
	}
	ext := 0
	if f.Extended {
		ext = 1
	}
	_, err := r.db.ExecContext(ctx, insertFrameSQL, offset.Microseconds(), int64(f.ID), ext, f.Payload())
	return err
}

func (r *captureRepository) Frames(ctx context.Context) ([]CapturedFrame, error) {
	rows, err := r.db.QueryContext(ctx, selectFramesSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close capture rows", "error", err)
		}
	}()

	var out []CapturedFrame
	for rows.Next() {
		var (
			cf       CapturedFrame
			offsetUS int64
			id       int64
			ext      int
			data     []byte
		)
		if err := rows.Scan(&cf.Seq, &offsetUS, &id, &ext, &data); err != nil {
			return nil, err
		}
		if len(data) > can.MaxDataLen {
			return nil, fmt.Errorf("frame %d: %w", cf.Seq, can.ErrInvalidLen)
		}
		cf.Offset = time.Duration(offsetUS) * time.Microsecond
		cf.Frame = can.NewFrame(uint32(id), data)
		cf.Frame.Extended = ext != 0
		out = append(out, cf)
	}
	return out, rows.Err()
}

func (r *captureRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countFramesSQL).Scan(&n)
	return n, err
}

func (r *captureRepository) SetMeta(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, upsertMetaSQL, key, value)
	return err
}

func (r *captureRepository) Meta(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx, selectMetaSQL, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}
