// Package probe answers the three environment questions the sanity checker
// combines into its verdict: is the debug override marker present, is this a
// production image, and has the update server responded with a usable
// firmware name. All inputs are externally produced files; this package only
// reads them and defaults conservatively when they are missing or malformed.
package probe

import (
	"encoding/json"
	"log"
	"os"
	"strings"

	fsc "github.com/xmidt-org/fscmonitor"
)

const (
	imageNameKey    = "imagename"
	productionToken = "PROD"
	firmwareNameKey = "firmwareFilename"
)

// Prober inspects the well-known paths. It holds no state between calls; the
// response artifact is re-read fresh on every poll iteration.
type Prober struct {
	paths  fsc.Paths
	logger *log.Logger
}

func New(paths fsc.Paths, logger *log.Logger) *Prober {
	if logger == nil {
		logger = log.Default()
	}
	return &Prober{paths: paths, logger: logger}
}

// FileExists reports whether path exists. Any stat error, including a
// permission problem, counts as absent.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DebugOverride reports whether the operator placed the override marker.
func (p *Prober) DebugOverride() bool {
	if FileExists(p.paths.DebugOverride) {
		p.logger.Printf("debug override file %s exists, forcing sanity check", p.paths.DebugOverride)
		return true
	}
	return false
}

// ClassifyImage determines the image class from the version descriptor,
// preferring the primary path. A missing or unreadable descriptor classifies
// as production: the stricter check is the fail-safe default.
func (p *Prober) ClassifyImage() fsc.ImageClass {
	path := p.paths.PrimaryVersion
	if !FileExists(path) {
		path = p.paths.SecondaryVersion
		if !FileExists(path) {
			p.logger.Printf("error: version descriptor not found at %s or %s, assuming production image",
				p.paths.PrimaryVersion, p.paths.SecondaryVersion)
			return fsc.ImageProduction
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		p.logger.Printf("error reading %s: %v, assuming production image", path, err)
		return fsc.ImageProduction
	}
	token, err := imageToken(data)
	if err != nil {
		p.logger.Printf("no %s entry in %s: %v, treating as debug/other image", imageNameKey, path, err)
		return fsc.ImageDebugOrOther
	}
	if token == productionToken {
		p.logger.Printf("production image detected, sanity check active")
		return fsc.ImageProduction
	}
	p.logger.Printf("debug/VBN image detected (%s)", token)
	return fsc.ImageDebugOrOther
}

// imageToken extracts the class token from a version descriptor: the line
// `imagename[:=]<value>` where the token is the second underscore-delimited
// field of the value (the whole value when it has no underscore). Trailing
// whitespace is trimmed before any comparison.
func imageToken(data []byte) (string, error) {
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, imageNameKey) {
			continue
		}
		value := line[len(imageNameKey):]
		if len(value) == 0 || (value[0] != ':' && value[0] != '=') {
			continue
		}
		value = strings.TrimSpace(value[1:])
		fields := strings.Split(value, "_")
		if len(fields) >= 2 {
			return fields[1], nil
		}
		return value, nil
	}
	return "", fsc.ErrNoImageName
}

// FetchRemoteResponse reads the update server's response artifact. The second
// return value distinguishes "server has not yet responded" (artifact absent)
// from "responded" (artifact present, Valid true only when a non-empty
// firmware filename was extracted).
func (p *Prober) FetchRemoteResponse() (fsc.RemoteResponse, bool) {
	if !FileExists(p.paths.RemoteResponse) {
		p.logger.Printf("response file %s does not exist yet, server has not responded", p.paths.RemoteResponse)
		return fsc.RemoteResponse{}, false
	}
	data, err := os.ReadFile(p.paths.RemoteResponse)
	if err != nil {
		p.logger.Printf("error reading %s: %v", p.paths.RemoteResponse, err)
		return fsc.RemoteResponse{}, true
	}
	name := firmwareName(data)
	if name == "" {
		p.logger.Printf("server response exists but has no valid firmware image name")
		return fsc.RemoteResponse{}, true
	}
	p.logger.Printf("server reported a firmware name of %s", name)
	return fsc.RemoteResponse{FirmwareFilename: name, Valid: true}, true
}

// firmwareName pulls the firmwareFilename field out of the response artifact.
// The artifact is usually a JSON document, but partial downloads leave
// JSON-like fragments behind, so a tolerant scan backs up the decoder.
func firmwareName(data []byte) string {
	var doc struct {
		FirmwareFilename string `json:"firmwareFilename"`
	}
	if err := json.Unmarshal(data, &doc); err == nil && doc.FirmwareFilename != "" {
		return doc.FirmwareFilename
	}
	return scanQuotedField(string(data), firmwareNameKey)
}

// scanQuotedField finds `"key":"value"` in a JSON-like fragment and returns
// the value, tolerating surrounding garbage and a truncated tail.
func scanQuotedField(s, key string) string {
	idx := strings.Index(s, `"`+key+`"`)
	if idx < 0 {
		return ""
	}
	rest := s[idx+len(key)+2:]
	rest = strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(rest, ":") {
		return ""
	}
	rest = strings.TrimLeft(rest[1:], " \t")
	if !strings.HasPrefix(rest, `"`) {
		return ""
	}
	rest = rest[1:]
	if end := strings.IndexAny(rest, "\",\n"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
