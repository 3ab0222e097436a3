package matchapi

import (
	"bytes"
	"encoding/json"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/jobapply-dashboard/internal/utils"
)

// FetchResult is the outcome of an ingestion run. Counts maps a source to the
// number of new postings; it is nil when the service answered with another shape.
type FetchResult struct {
	Counts map[string]int
	Raw    json.RawMessage
}

// Summary renders the counts for the event log, falling back to the raw payload.
func (r *FetchResult) Summary() string {
	if r == nil {
		return ""
	}

	if r.Counts != nil {
		// map keys are marshalled in sorted order
		data, err := json.Marshal(r.Counts)
		if err == nil {
			return string(data)
		}
	}

	return utils.TruncateForLog(string(r.Raw), maxLogLength)
}

func decodeFetch(data []byte, logger *zap.Logger) *FetchResult {
	result := &FetchResult{Raw: json.RawMessage(bytes.TrimSpace(data))}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Debug("fetch response is not a json object", zap.Error(err))
		return result
	}

	raw, ok := payload["counts"]
	if !ok || raw == nil {
		logger.Debug("fetch response has no counts")
		return result
	}

	var counts map[string]int
	if err := mapstructure.WeakDecode(raw, &counts); err != nil {
		logger.Debug("decoding fetch counts", zap.Error(err))
		return result
	}

	result.Counts = counts
	return result
}
