// Package dispatch implements the processed-file dispatcher: given a raw
// mail buffer or a previously-decoded tree, it detects the mail's kind,
// runs the matching extractor set, and writes the raw and processed JSON
// files an operator or the watcher expects to find on disk.
package dispatch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/debug"
	"github.com/rokbattles/mailcore/internal/errs"
	"github.com/rokbattles/mailcore/internal/kinds"
	"github.com/rokbattles/mailcore/internal/kinds/barcanyonkillboss"
	"github.com/rokbattles/mailcore/internal/kinds/battle"
	"github.com/rokbattles/mailcore/internal/kinds/battlev2"
	"github.com/rokbattles/mailcore/internal/kinds/duelbattle2"
)

// Format identifies how the input buffer should be turned into a decoded
// tree: a raw encoded mail, or JSON text from a previously-written
// "<id>.json" file.
type Format int

const (
	Binary Format = iota
	JSON
)

// OutputPaths are the files a dispatch run wrote or would write.
type OutputPaths struct {
	Raw         string
	Processed   string
	ProcessedV2 string // empty unless the mail is Battle-kind
}

// Result summarizes a completed dispatch run.
type Result struct {
	ID      string
	Kind    kinds.Kind
	Known   bool
	RawOnly bool
	Paths   OutputPaths
}

// Process runs the full dispatcher flow against data read from inputPath,
// writing outputs under outputDir. rawOnly skips extraction and the
// processed-file writes entirely.
func Process(inputPath string, data []byte, outputDir string, rawOnly bool, format Format) (*Result, error) {
	id := extractMailID(inputPath)

	decoded, err := decodeInput(data, format)
	if err != nil {
		return nil, errs.NewProcessError("decode", id, inputPath, err)
	}

	kind, known := kinds.Detect(decoded.Sections)
	includeV2 := known && kind == kinds.Battle
	paths := determineOutputPaths(outputDir, id, includeV2)

	debug.LogDispatch("mail %s: detected kind=%q known=%v", id, kind, known)

	if err := writeJSONFile(paths.Raw, decoded); err != nil {
		return nil, errs.NewProcessError("write-raw", id, paths.Raw, err)
	}

	result := &Result{ID: id, Kind: kind, Known: known, RawOnly: rawOnly, Paths: paths}
	if rawOnly {
		result.Paths.Processed = ""
		result.Paths.ProcessedV2 = ""
		return result, nil
	}

	if !known {
		debug.LogDispatch("mail %s: kind unrecognized, skipping extraction", id)
		result.Paths.Processed = ""
		result.Paths.ProcessedV2 = ""
		return result, nil
	}

	processed, err := runExtractors(kind, decoded.Sections)
	if err != nil {
		return nil, errs.NewProcessError("extract", id, paths.Processed, err)
	}
	if err := writeJSONFile(paths.Processed, processed); err != nil {
		return nil, errs.NewProcessError("write-processed", id, paths.Processed, err)
	}

	if includeV2 {
		entries, err := battlev2.Process(decoded.Sections)
		if err != nil {
			return nil, errs.NewProcessError("extract-v2", id, paths.ProcessedV2, err)
		}
		if err := writeJSONFile(paths.ProcessedV2, entries); err != nil {
			return nil, errs.NewProcessError("write-processed-v2", id, paths.ProcessedV2, err)
		}
	} else {
		result.Paths.ProcessedV2 = ""
	}

	return result, nil
}

func decodeInput(data []byte, format Format) (*codec.DecodedMail, error) {
	switch format {
	case Binary:
		return codec.Decode(data)
	case JSON:
		decoded := &codec.DecodedMail{}
		if err := json.Unmarshal(data, decoded); err != nil {
			return nil, fmt.Errorf("parse decoded mail JSON: %w", err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("unknown input format %d", format)
	}
}

// runExtractors chooses and runs the extractor set for kind, returning a
// value ready for JSON marshaling: a single processed mail for DuelBattle2
// and BarCanyonKillBoss, or an array of processed groups for Battle.
func runExtractors(kind kinds.Kind, sections []codec.Value) (interface{}, error) {
	switch kind {
	case kinds.Battle:
		return battle.Process(sections)
	case kinds.DuelBattle2:
		return duelbattle2.ProcessSequential(sections)
	case kinds.BarCanyonKillBoss:
		return barcanyonkillboss.ProcessSequential(sections)
	default:
		return nil, fmt.Errorf("dispatch: no extractor set for kind %q", kind)
	}
}

func writeJSONFile(path string, value interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	buf, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return os.WriteFile(path, buf, 0o644)
}

func determineOutputPaths(outputDir, id string, includeV2 bool) OutputPaths {
	paths := OutputPaths{
		Raw:       filepath.Join(outputDir, id+".json"),
		Processed: filepath.Join(outputDir, id+"-processed.json"),
	}
	if includeV2 {
		paths.ProcessedV2 = filepath.Join(outputDir, id+"-processed-v2.json")
	}
	return paths
}

// IsProcessedFilename reports whether name is a dispatcher output file
// rather than raw input, matching the batch driver's skip rule.
func IsProcessedFilename(name string) bool {
	return strings.HasSuffix(name, "-processed.json") || strings.HasSuffix(name, "-processed-v2.json")
}

// extractMailID derives a numeric mail id from a filename: the rightmost
// all-ASCII-digit dot-separated segment, falling back to the file stem if
// no such segment exists.
func extractMailID(path string) string {
	name := filepath.Base(path)
	parts := strings.Split(name, ".")
	if len(parts) == 0 {
		return friendlyStem(name)
	}

	last := parts[len(parts)-1]
	if isASCIIDigits(last) {
		return last
	}

	for i := len(parts) - 2; i >= 0; i-- {
		if isASCIIDigits(parts[i]) {
			return parts[i]
		}
	}

	return friendlyStem(name)
}

// friendlyStem returns the filename without its final extension, falling
// back to "mail" if that would be empty.
func friendlyStem(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		return "mail"
	}
	return stem
}

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
