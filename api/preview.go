package api

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

var binaryTypes = []string{
	"image/", "video/", "audio/", "application/octet-stream",
	"application/pdf", "application/zip", "application/gzip", "font/",
}

var textTypes = []string{
	"text/", "application/json", "application/xml", "application/x-www-form-urlencoded",
}

// safeBodyPreview returns a loggable preview of a response body. Binary or
// unknown content is replaced by its size and a short hash.
func safeBodyPreview(body []byte, contentType string, maxChars int) string {
	if maxChars == 0 {
		maxChars = 200
	}
	ct := strings.ToLower(contentType)
	digest := func(kind string) string {
		hash := sha256.Sum256(body)
		return fmt.Sprintf("<%s: %d bytes, sha256=%s>", kind, len(body), hex.EncodeToString(hash[:8]))
	}
	for _, t := range binaryTypes {
		if strings.Contains(ct, t) {
			return digest("binary")
		}
	}
	if ct != "" {
		known := false
		for _, t := range textTypes {
			if strings.Contains(ct, t) {
				known = true
				break
			}
		}
		if !known {
			return digest("unknown type")
		}
	}
	s := string(body)
	if len(s) > maxChars {
		return s[:maxChars] + fmt.Sprintf("[truncated, total: %d chars]", len(s))
	}
	return s
}
