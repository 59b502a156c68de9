package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hlsnap/internal/application/port"
	"hlsnap/internal/domain/model"
)

const indent = "  "

// Writer 将报告或快照写入单个 JSON 文件（临时文件 + rename，整体替换）
type Writer struct {
	path string
}

func New(path string) *Writer {
	return &Writer{path: strings.TrimSpace(path)}
}

func (w *Writer) Path() string { return w.path }

func (w *Writer) WriteReport(ctx context.Context, r *model.Report) error {
	if r == nil {
		return errors.New("nil report")
	}
	b, err := json.MarshalIndent(r, "", indent)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return w.write(ctx, b)
}

// WriteSnapshot pretty-prints raw without reordering keys.
func (w *Writer) WriteSnapshot(ctx context.Context, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", indent); err != nil {
		return fmt.Errorf("indent snapshot: %w", err)
	}
	return w.write(ctx, buf.Bytes())
}

func (w *Writer) write(ctx context.Context, b []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.path == "" {
		return errors.New("output path is empty")
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(append(b, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		return fmt.Errorf("rename to %s: %w", w.path, err)
	}
	return nil
}

var (
	_ port.ReportWriter   = (*Writer)(nil)
	_ port.SnapshotWriter = (*Writer)(nil)
)
