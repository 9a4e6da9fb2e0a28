package internal

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rm-hull/pixconv/internal/png"
	"github.com/rm-hull/pixconv/internal/raw"
)

// Converter turns every raw capture matching a glob in the inbox into a PNG
// alongside it, named <file>.png. Each file is handled by exactly one worker.
type Converter struct {
	startTime time.Time
	endTime   time.Time
	inbox     string
	poolSize  int
	maxJobs   int
	jobs      chan string
	results   chan error
	files     []string
	layout    raw.Layout
	opts      png.EncodeOptions
	pipeline  []png.PipelineStage
}

func NewConverter(inbox, pattern string, poolSize int, layout raw.Layout, opts png.EncodeOptions, stages ...png.PipelineStage) (*Converter, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid raw layout: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(inbox, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", inbox, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.HasSuffix(m, ".png") || strings.HasSuffix(m, ".tmp") {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	log.Printf("Inbox %s contains %d files matching %s", inbox, len(files), pattern)

	return NewFileConverter(files, poolSize, layout, opts, stages...)
}

// NewFileConverter is NewConverter over an explicit list of files.
func NewFileConverter(files []string, poolSize int, layout raw.Layout, opts png.EncodeOptions, stages ...png.PipelineStage) (*Converter, error) {
	if poolSize < 1 {
		return nil, errors.New("pool size must be at least 1")
	}
	return &Converter{
		startTime: time.Now(),
		poolSize:  poolSize,
		maxJobs:   -1,
		jobs:      make(chan string),
		results:   make(chan error),
		files:     files,
		layout:    layout,
		opts:      opts,
		pipeline:  stages,
	}, nil
}

// DispatchJobs sends files to the jobs channel for processing by workers.
// When maxJobs is greater than zero, it limits the number of jobs dispatched,
// hence set to -1 to dispatch all jobs.
func (p *Converter) DispatchJobs() {
	go func() {
		for n, file := range p.files {
			if p.maxJobs > 0 && n >= p.maxJobs {
				break
			}
			p.jobs <- file
		}
		close(p.jobs)
	}()
}

func (p *Converter) StartWorkers() {
	log.Printf("Starting conversion with pool size: %d", p.poolSize)

	for i := range p.poolSize {
		go p.worker(i)
	}
}

func (p *Converter) worker(i int) {
	for file := range p.jobs {
		p.results <- p.processFile(file)
	}
	log.Printf("Worker %d finished", i)
}

func OutputName(file string) string {
	return file + ".png"
}

func (p *Converter) processFile(file string) error {
	filename := OutputName(file)

	// if the output already exists, skip processing
	if _, err := os.Stat(filename); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	buf, err := raw.Load(file, p.layout)
	if err != nil {
		return err
	}

	img := &png.Image{Buf: buf}
	if err := img.Pipeline(p.pipeline...); err != nil {
		return fmt.Errorf("failed to process image pipeline for %s: %w", file, err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(file), "convert-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	cleanupTemp := true
	defer func() {
		_ = tmpFile.Close()
		if cleanupTemp {
			_ = os.Remove(tmpFile.Name())
		}
	}()

	if err := img.Write(tmpFile, p.opts); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file before rename: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	cleanupTemp = false
	return nil
}

// Wait blocks until every dispatched file has been handled and returns the
// failures, if any.
func (p *Converter) Wait() []error {
	waitFor := p.maxJobs
	if waitFor < 0 || waitFor > len(p.files) {
		waitFor = len(p.files)
	}
	log.Printf("Waiting for %d files to be converted", waitFor)

	errors := make([]error, 0, 10)
	for range waitFor {
		err := <-p.results
		if err != nil {
			errors = append(errors, err)
		}
	}
	p.endTime = time.Now()
	elapsed := p.endTime.Sub(p.startTime)
	log.Printf("All files converted in %s (errors=%d)", elapsed, len(errors))
	return errors
}

// Run is StartWorkers, DispatchJobs and Wait in one go.
func (p *Converter) Run() []error {
	p.StartWorkers()
	p.DispatchJobs()
	return p.Wait()
}
