package fingerprint

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os/exec"

	"github.com/contre95/tonegarden/src/music"
)

// Service shells out to fpcalc (chromaprint) to fingerprint audio
// files. fpcalc handles the audio decoding for every format we index.
type Service struct{}

// NewService creates a new fingerprint service.
func NewService() *Service {
	return &Service{}
}

// Fingerprint runs `fpcalc -json` on the file and returns the
// fingerprint string and the duration rounded to the nearest second.
func (s *Service) Fingerprint(ctx context.Context, path string) (string, int, error) {
	if _, err := exec.LookPath("fpcalc"); err != nil {
		return "", 0, &music.FingerprintError{
			Msg: "fpcalc not found, install chromaprint tools (nix-shell -p chromaprint / apt install chromaprint-tools / brew install chromaprint)",
			Err: err,
		}
	}

	cmd := exec.CommandContext(ctx, "fpcalc", "-json", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", 0, &music.FingerprintError{Msg: "fpcalc failed: " + string(exitErr.Stderr), Err: err}
		}
		return "", 0, &music.FingerprintError{Msg: "fpcalc failed", Err: err}
	}

	var result struct {
		Fingerprint string  `json:"fingerprint"`
		Duration    float64 `json:"duration"`
	}
	if err := json.Unmarshal(output, &result); err != nil {
		return "", 0, &music.FingerprintError{Msg: "unparseable fpcalc output", Err: err}
	}
	if result.Fingerprint == "" {
		return "", 0, &music.FingerprintError{Msg: "fpcalc produced an empty fingerprint"}
	}

	return result.Fingerprint, int(math.Round(result.Duration)), nil
}
