// Package whisper implements local speech recognition by shelling out to a
// whisper.cpp CLI binary. Models are ggml files fetched from Hugging Face
// on demand.
package whisper

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Neroli1108/intellidoc-reader/pkg/errorsx"
	"github.com/Neroli1108/intellidoc-reader/pkg/resilience"
)

// Model identifies a whisper.cpp model size.
type Model string

const (
	ModelTiny   Model = "tiny"
	ModelBase   Model = "base"
	ModelSmall  Model = "small"
	ModelMedium Model = "medium"
	ModelLarge  Model = "large"
)

// Filename returns the ggml model filename.
func (m Model) Filename() string {
	return "ggml-" + string(m) + ".bin"
}

// SizeBytes returns the approximate download size.
func (m Model) SizeBytes() int64 {
	switch m {
	case ModelTiny:
		return 75_000_000
	case ModelBase:
		return 142_000_000
	case ModelSmall:
		return 466_000_000
	case ModelMedium:
		return 1_500_000_000
	case ModelLarge:
		return 3_000_000_000
	default:
		return 0
	}
}

const modelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// DownloadModel fetches the named model into targetDir if absent and
// returns the model path. Downloads go through a temp file so a partial
// fetch never masquerades as a model.
func DownloadModel(ctx context.Context, model Model, targetDir string) (string, error) {
	filename := model.Filename()
	targetPath := filepath.Join(targetDir, filename)

	if _, err := os.Stat(targetPath); err == nil {
		return targetPath, nil
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonIO)
	}

	policy := resilience.NewRetryPolicy(2, time.Second)
	err := policy.Do(func() error {
		return fetchFile(ctx, modelBaseURL+filename, targetPath)
	})
	if err != nil {
		return "", err
	}
	return targetPath, nil
}

func fetchFile(ctx context.Context, url, targetPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonAPI)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonAPI)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return resilience.RateLimitError{Provider: "huggingface", Message: resp.Status}
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errorsx.Errorf(errorsx.ReasonAPI, "download failed: HTTP %d %s",
			resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	tmpPath := targetPath + ".download"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonIO)
	}
	n, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return errorsx.Wrap(copyErr, errorsx.ReasonIO)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return errorsx.Wrap(closeErr, errorsx.ReasonIO)
	}
	if n <= 0 {
		os.Remove(tmpPath)
		return errorsx.New(errorsx.ReasonAPI, "downloaded empty payload")
	}
	if err := os.Rename(tmpPath, targetPath); err != nil {
		os.Remove(tmpPath)
		return errorsx.Wrap(err, errorsx.ReasonIO)
	}
	return nil
}
