package toolset

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// outputWriter redirects action responses to the filesystem: either the
// whole payload to a uniquely named file, or just embedded file payloads
// extracted into the output directory.
type outputWriter struct {
	dir    string
	toFile bool
	logger *zap.Logger
}

func newOutputWriter(dir string, toFile bool, logger *zap.Logger) *outputWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &outputWriter{
		dir:    dir,
		toFile: toFile,
		logger: logger.Named("output"),
	}
}

// redirect applies the configured output handling to a raw response. Any
// failure leaves the original response untouched.
func (w *outputWriter) redirect(action fmt.Stringer, entityID string, response map[string]any) map[string]any {
	if w.dir == "" {
		return response
	}
	if w.toFile {
		if redirected, ok := w.writeWhole(action, entityID, response); ok {
			return redirected
		}
		return response
	}
	return w.extractFiles(action, entityID, response)
}

// writeWhole writes the entire response as JSON to a file named by a hash
// of action, entity and timestamp, returning a small descriptor instead of
// the payload.
func (w *outputWriter) writeWhole(action fmt.Stringer, entityID string, response map[string]any) (map[string]any, bool) {
	data, err := json.Marshal(response)
	if err != nil {
		w.logger.Debug("encode output failed", zap.Error(err))
		return nil, false
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		w.logger.Debug("ensure output dir failed", zap.Error(err))
		return nil, false
	}

	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%d", action, entityID, time.Now().UnixNano())))
	outfile := filepath.Join(w.dir, hex.EncodeToString(sum[:]))
	if err := os.WriteFile(outfile, data, 0o644); err != nil {
		w.logger.Debug("write output file failed", zap.Error(err))
		return nil, false
	}
	w.logger.Info("output written to file", zap.String("file", outfile))
	return map[string]any{
		"message": fmt.Sprintf("output written to %s", outfile),
		"file":    outfile,
	}, true
}

// extractFiles scans the response for embedded file payloads (name + base64
// content) and replaces each with the path of a file written to the output
// directory. Returns the original response untouched when anything fails.
func (w *outputWriter) extractFiles(action fmt.Stringer, entityID string, response map[string]any) map[string]any {
	prefix := fmt.Sprintf("%s_%s_%d", action, entityID, time.Now().UnixNano())

	out := make(map[string]any, len(response))
	changed := false
	for key, value := range response {
		path, ok := w.extractOne(prefix, value)
		if ok {
			out[key] = path
			changed = true
			continue
		}
		out[key] = value
	}
	if !changed {
		return response
	}
	return out
}

func (w *outputWriter) extractOne(prefix string, value any) (string, bool) {
	payload, ok := value.(map[string]any)
	if !ok {
		return "", false
	}
	name, ok := payload["name"].(string)
	if !ok || name == "" {
		return "", false
	}
	encoded, ok := payload["content"].(string)
	if !ok {
		return "", false
	}
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		w.logger.Debug("ensure output dir failed", zap.Error(err))
		return "", false
	}

	outfile := filepath.Join(w.dir, prefix+"_"+strings.ReplaceAll(name, "/", "_"))
	if err := os.WriteFile(outfile, content, 0o644); err != nil {
		w.logger.Debug("write extracted file failed", zap.String("file", outfile), zap.Error(err))
		return "", false
	}
	return outfile, true
}
