package extract

import (
	"sync"

	"github.com/rokbattles/mailcore/internal/codec"
)

// Extractor extracts one named section of processed data from a decoded
// mail's lossy value tree.
type Extractor interface {
	// Section returns the section name used in the processed output.
	Section() string
	// Extract pulls the section's data out of the decoded input.
	Extract(input codec.Value) (*Section, error)
}

// Processor runs a fixed set of extractors over decoded mail input.
type Processor struct {
	extractors []Extractor
}

// NewProcessor returns a Processor that runs the given extractors.
func NewProcessor(extractors []Extractor) *Processor {
	return &Processor{extractors: extractors}
}

// RunSequential runs extractors in the order provided, stopping at the
// first failure. A panicking extractor is recovered and reported as
// ExtractorPanicked rather than crashing the process, matching RunParallel.
func (p *Processor) RunSequential(input codec.Value) (*ProcessedMail, error) {
	if err := p.ensureUniqueSections(); err != nil {
		return nil, err
	}
	processed := NewProcessedMail()
	for _, extractor := range p.extractors {
		section := extractor.Section()
		data, err := runExtractRecovered(extractor, input)
		if err != nil {
			if pe, ok := err.(*ProcessError); ok && pe.Kind == ExtractorPanicked {
				return nil, err
			}
			return nil, errExtractorFailed(section, err)
		}
		if _, existed := processed.Insert(section, data); existed {
			return nil, errDuplicateSection(section)
		}
	}
	return processed, nil
}

// runExtractRecovered calls extractor.Extract, converting a panic into an
// ExtractorPanicked error instead of letting it propagate.
func runExtractRecovered(extractor Extractor, input codec.Value) (data *Section, err error) {
	section := extractor.Section()
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, errExtractorPanicked(section, r)
		}
	}()
	return extractor.Extract(input)
}

// RunParallel runs extractors concurrently, since section extraction makes
// no assumptions about dependencies between sections. A panicking extractor
// is recovered and reported as ExtractorPanicked rather than crashing the
// process.
func (p *Processor) RunParallel(input codec.Value) (*ProcessedMail, error) {
	if err := p.ensureUniqueSections(); err != nil {
		return nil, err
	}

	type result struct {
		section string
		data    *Section
		err     error
	}
	results := make([]result, len(p.extractors))

	var wg sync.WaitGroup
	wg.Add(len(p.extractors))
	for i, extractor := range p.extractors {
		go func(i int, extractor Extractor) {
			defer wg.Done()
			data, err := runExtractRecovered(extractor, input)
			results[i] = result{section: extractor.Section(), data: data, err: err}
		}(i, extractor)
	}
	wg.Wait()

	processed := NewProcessedMail()
	for _, r := range results {
		if r.err != nil {
			if pe, ok := r.err.(*ProcessError); ok && pe.Kind == ExtractorPanicked {
				return nil, r.err
			}
			return nil, errExtractorFailed(r.section, r.err)
		}
		if _, existed := processed.Insert(r.section, r.data); existed {
			return nil, errDuplicateSection(r.section)
		}
	}
	return processed, nil
}

func (p *Processor) ensureUniqueSections() error {
	seen := make(map[string]struct{}, len(p.extractors))
	for _, extractor := range p.extractors {
		section := extractor.Section()
		if _, ok := seen[section]; ok {
			return errDuplicateSection(section)
		}
		seen[section] = struct{}{}
	}
	return nil
}
