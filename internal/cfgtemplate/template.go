// Package cfgtemplate renders new recording-tool configs from a fixed schema.
package cfgtemplate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/rpggio/confsched/internal/domain/activity"
	"github.com/rpggio/confsched/internal/domain/task"
)

// FilePrefix is prepended to every generated config name.
const FilePrefix = "DMR-"

// DefaultOutputRoot is where the recording tool stores downloaded streams.
const DefaultOutputRoot = "./直播回放"

// FileMode is applied to generated configs so a recording tool running as
// another user can read them.
const FileMode os.FileMode = 0o644

// ErrInvalidRequest indicates a template request that cannot be rendered.
var ErrInvalidRequest = errors.New("invalid template request")

// Request describes a stream to record.
type Request struct {
	TaskName string
	URL      string
	Tags     string
	Repost   bool
}

// Recorder writes audit entries.
type Recorder interface {
	Record(ctx context.Context, action activity.Action, filename, details string) error
}

// Generator writes rendered configs into the enabled directory.
type Generator struct {
	dir        string
	outputRoot string
	recorder   Recorder
	logger     *slog.Logger
}

// NewGenerator creates a Generator writing into dir. recorder and logger may be nil.
func NewGenerator(dir string, recorder Recorder, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{dir: dir, outputRoot: DefaultOutputRoot, recorder: recorder, logger: logger}
}

// FileName returns the config name generated for taskName.
func FileName(taskName string) string {
	return FilePrefix + taskName + task.ConfigExt
}

// Generate renders the config for req and writes it, replacing any previous
// file of the same name. It returns the written path.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}

	data, err := Render(req, g.outputRoot)
	if err != nil {
		return "", err
	}

	name := FileName(req.TaskName)
	path := filepath.Join(g.dir, name)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		g.logger.Error("template write failed", "path", path, "error", err)
		return "", fmt.Errorf("write template: %w", err)
	}
	// atomic.WriteFile creates new files 0600.
	if err := os.Chmod(path, FileMode); err != nil {
		return "", fmt.Errorf("set template permissions: %w", err)
	}

	g.logger.Info("template created", "filename", name)
	if g.recorder != nil {
		if err := g.recorder.Record(ctx, activity.ActionCreateTemplate, name, req.URL); err != nil {
			g.logger.Warn("failed to record activity", "filename", name, "error", err)
		}
	}
	return path, nil
}

// Render produces the YAML document for req.
func Render(req Request, outputRoot string) ([]byte, error) {
	copyright, noReprint := 1, 1
	if req.Repost {
		copyright, noReprint = 2, 0
	}

	doc := document{
		CommonEventArgs: commonEventArgs{
			AutoRender:    false,
			AutoUpload:    true,
			AutoTranscode: false,
		},
		DownloadArgs: downloadArgs{
			DLType:     "live",
			URL:        req.URL,
			OutputDir:  outputRoot + "/" + req.TaskName,
			OutputName: "{STREAMER.NAME}-{CTIME.YEAR}年{CTIME.MONTH:02d}月{CTIME.DAY:02d}日{CTIME.HOUR:02d}点{CTIME.MINUTE:02d}分",
			Segment:    7200,
			Engine:     "ffmpeg",
			Danmaku:    false,
			Video:      true,
		},
		UploadArgs: uploadArgs{
			SrcVideo: videoUpload{
				Account:   "bilibili",
				Retry:     3,
				Realtime:  true,
				MinLength: 10,
				Limit:     3,
				Copyright: copyright,
				Source:    req.URL,
				TID:       65,
				Cover:     "",
				Title:     "[{STREAMER.NAME}/直播回放] {TITLE} {CTIME.YEAR}年{CTIME.MONTH:02d}月{CTIME.DAY:02d}日",
				Desc: "{STREAMER.NAME} 的直播回放\n" +
					"标题：{TITLE}\n" +
					"时间：{CTIME.YEAR}年{CTIME.MONTH:02d}月{CTIME.DAY:02d}日\n" +
					"直播地址：{STREAMER.URL}\n",
				Tag:       req.Tags,
				DTime:     0,
				Dolby:     0,
				NoReprint: noReprint,
				OpenElec:  1,
				Dynamic:   "{STREAMER.NAME} 的直播回放，{CTIME.YEAR}年{CTIME.MONTH:02d}月{CTIME.DAY:02d}日",
			},
		},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return buf.Bytes(), nil
}

func validate(req Request) error {
	name := strings.TrimSpace(req.TaskName)
	if name == "" || name != req.TaskName {
		return fmt.Errorf("%w: task name must be non-empty without surrounding spaces", ErrInvalidRequest)
	}
	if err := task.ValidateFilename(FileName(name)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if task.IsProtected(FileName(name)) {
		return fmt.Errorf("%w: %s", task.ErrProtected, FileName(name))
	}
	if strings.TrimSpace(req.URL) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}
	return nil
}
