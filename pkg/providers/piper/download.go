package piper

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

const voiceBaseURL = "https://huggingface.co/rhasspy/piper-voices/resolve/main/"

// DownloadVoice fetches a voice's onnx model and json config into targetDir
// if absent and returns the model path. Voice ids follow the piper naming
// scheme, e.g. "en_US-lessac-medium".
func DownloadVoice(ctx context.Context, voiceID, targetDir string) (string, error) {
	modelPath := filepath.Join(targetDir, voiceID+".onnx")
	configPath := filepath.Join(targetDir, voiceID+".onnx.json")

	if _, err := os.Stat(modelPath); err == nil {
		return modelPath, nil
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonIO)
	}

	// The repository lays voices out as <lang>/<region>/<name>/<quality>/.
	base := voiceBaseURL + strings.ReplaceAll(voiceID, "-", "/")

	policy := resilience.NewRetryPolicy(2, time.Second)
	if err := policy.Do(func() error {
		return fetchTo(ctx, base+"/"+voiceID+".onnx", modelPath)
	}); err != nil {
		return "", err
	}
	// The config is small and non-critical to retry separately.
	if err := fetchTo(ctx, base+"/"+voiceID+".onnx.json", configPath); err != nil {
		return "", err
	}
	return modelPath, nil
}

func fetchTo(ctx context.Context, url, targetPath string) error {
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
		return errorsx.Errorf(errorsx.ReasonAPI, "download failed: HTTP %d", resp.StatusCode)
	}

	tmpPath := targetPath + ".download"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonIO)
	}
	_, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return errorsx.Wrap(copyErr, errorsx.ReasonIO)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return errorsx.Wrap(closeErr, errorsx.ReasonIO)
	}
	if err := os.Rename(tmpPath, targetPath); err != nil {
		os.Remove(tmpPath)
		return errorsx.Wrap(err, errorsx.ReasonIO)
	}
	return nil
}
