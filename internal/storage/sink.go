package storage

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/internal/normalize"
	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
	"github.com/rohmanhakim/sitemap-crawler/pkg/fileutil"
)

/*
Responsibilities
- Persist one artifact per crawled URL under <root>/<domainKey>/<relativePath>
- Clean the active domain directory at most once per run, strictly before
  any write for that domain
- Write the flat frontier link list for auditability

Output Characteristics
- Stable directory layout
- Deterministic filenames (PathMapper)
- Overwrite-safe reruns; path collisions are last-write-wins
- No partial-file recovery: a failed write is reported for that URL only,
  previously written artifacts remain intact
*/

type Sink interface {
	CleanDomain(domainKey string) failure.ClassifiedError
	Write(pageURL url.URL, artifact normalize.Artifact) (WriteResult, failure.ClassifiedError)
	WriteLinksList(path string, urls []string) failure.ClassifiedError
}

type LocalSink struct {
	metadataSink metadata.MetadataSink
	outputRoot   string
	mapper       PathMapper

	mu       sync.Mutex
	prepared map[string]struct{}
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
	outputRoot string,
	mapper PathMapper,
) *LocalSink {
	return &LocalSink{
		metadataSink: metadataSink,
		outputRoot:   outputRoot,
		mapper:       mapper,
		prepared:     make(map[string]struct{}),
	}
}

// CleanDomain deletes and recreates a domain's output directory.
// Invoked synchronously before the fetch phase so that cleanup
// happens-before every write for that domain; workers never clean.
func (s *LocalSink) CleanDomain(domainKey string) failure.ClassifiedError {
	domainDir := filepath.Join(s.outputRoot, domainKey)
	if err := fileutil.CleanDir(domainDir); err != nil {
		storageErr := &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseCleanupFailure,
			Path:    domainDir,
		}
		s.recordError("LocalSink.CleanDomain", "", storageErr)
		return storageErr
	}

	s.mu.Lock()
	s.prepared[domainKey] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Write persists one artifact at the mapped path. Domain directories other
// than the pre-cleaned active one are created lazily on first write.
func (s *LocalSink) Write(pageURL url.URL, artifact normalize.Artifact) (WriteResult, failure.ClassifiedError) {
	domainKey, relativePath := s.mapper.MapPath(pageURL)

	if err := s.ensureDomainDir(domainKey); err != nil {
		s.recordError("LocalSink.Write", artifact.SourceURL(), err)
		return WriteResult{}, err
	}

	fullPath := filepath.Join(s.outputRoot, domainKey, relativePath)
	if err := os.WriteFile(fullPath, artifact.Content(), 0644); err != nil {
		cause := ErrCauseWriteFailure
		if isDiskFull(err) {
			cause = ErrCauseDiskFull
		}
		storageErr := &StorageError{
			Message: err.Error(),
			Cause:   cause,
			Path:    fullPath,
		}
		s.recordError("LocalSink.Write", artifact.SourceURL(), storageErr)
		return WriteResult{}, storageErr
	}

	s.metadataSink.RecordArtifact(
		metadata.ArtifactMarkdown,
		fullPath,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, artifact.SourceURL()),
		},
	)
	return NewWriteResult(domainKey, fullPath), nil
}

// WriteLinksList writes every frontier URL, one per line, to the given
// path. Written once per run before fetching starts.
func (s *LocalSink) WriteLinksList(path string, urls []string) failure.ClassifiedError {
	content := strings.Join(urls, "\n")
	if len(urls) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		storageErr := &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseWriteFailure,
			Path:    path,
		}
		s.recordError("LocalSink.WriteLinksList", "", storageErr)
		return storageErr
	}
	s.metadataSink.RecordArtifact(metadata.ArtifactLinkList, path, []metadata.Attribute{})
	return nil
}

func (s *LocalSink) ensureDomainDir(domainKey string) failure.ClassifiedError {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prepared[domainKey]; ok {
		return nil
	}
	if err := fileutil.EnsureDir(s.outputRoot, domainKey); err != nil {
		return &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseWriteFailure,
			Path:    filepath.Join(s.outputRoot, domainKey),
		}
	}
	s.prepared[domainKey] = struct{}{}
	return nil
}

func (s *LocalSink) recordError(action string, sourceURL string, err failure.ClassifiedError) {
	attrs := []metadata.Attribute{}
	if sourceURL != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrURL, sourceURL))
	}
	s.metadataSink.RecordError(
		time.Now(),
		"storage",
		action,
		metadata.CauseStorageFailure,
		err.Error(),
		attrs,
	)
}

func isDiskFull(err error) bool {
	return err != nil && strings.Contains(err.Error(), syscall.ENOSPC.Error())
}
