package storage

// Persistence

type WriteResult struct {
	domainKey string
	path      string
}

func NewWriteResult(domainKey string, path string) WriteResult {
	return WriteResult{
		domainKey: domainKey,
		path:      path,
	}
}

func (w *WriteResult) DomainKey() string {
	return w.domainKey
}

func (w *WriteResult) Path() string {
	return w.path
}
