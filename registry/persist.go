package registry

import (
	"bufio"
	"iter"
	"os"
)

// Targets names the files Persist writes. An empty CombinedPath skips the
// combined file.
type Targets struct {
	ListPath     string
	TreePath     string
	CombinedPath string
}

// Save writes the list (descending) to listPath and the tree (ascending) to
// treePath. A failure on one path does not stop the other; the returned
// *SaveError names every path that failed.
func (r *Registry) Save(listPath, treePath string) error {
	return r.Persist(Targets{ListPath: listPath, TreePath: treePath})
}

// SaveCombined writes list order followed by tree order into one file.
func (r *Registry) SaveCombined(path string) error {
	if err := r.writeRecords(path, r.combined()); err != nil {
		return &SaveError{Failures: map[string]error{path: err}}
	}
	return nil
}

// Persist writes every target in t.
func (r *Registry) Persist(t Targets) error {
	failures := make(map[string]error)

	if err := r.writeRecords(t.ListPath, r.list.All()); err != nil {
		failures[t.ListPath] = err
	}
	if err := r.writeRecords(t.TreePath, r.tree.All()); err != nil {
		failures[t.TreePath] = err
	}
	if t.CombinedPath != "" {
		if err := r.writeRecords(t.CombinedPath, r.combined()); err != nil {
			failures[t.CombinedPath] = err
		}
	}

	if len(failures) > 0 {
		return &SaveError{Failures: failures}
	}
	return nil
}

func (r *Registry) combined() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for rec := range r.list.All() {
			if !yield(rec) {
				return
			}
		}
		for rec := range r.tree.All() {
			if !yield(rec) {
				return
			}
		}
	}
}

func (r *Registry) writeRecords(path string, records iter.Seq[Record]) error {
	file, err := r.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return wrapIO(err, path, "create output file")
	}

	w := bufio.NewWriter(file)
	count := 0
	for rec := range records {
		if _, err := w.WriteString(r.codec.Serialize(rec) + "\n"); err != nil {
			file.Close()
			return wrapIO(err, path, "write record")
		}
		count++
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return wrapIO(err, path, "flush output file")
	}
	if err := file.Close(); err != nil {
		return wrapIO(err, path, "close output file")
	}

	r.logger.Info("patients saved", "path", path, "count", count)
	return nil
}
