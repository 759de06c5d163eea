package uploads

import (
	"errors"
	"io/fs"

	"github.com/sirupsen/logrus"
)

// Result is the outcome of one best-effort file deletion.
type Result struct {
	Ref     string
	Path    string
	Removed bool
	Err     error
}

// Report collects the deletion results of one record-level operation.
type Report []Result

func (r Report) Removed() int {
	n := 0
	for _, res := range r {
		if res.Removed {
			n++
		}
	}
	return n
}

func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Log writes one entry per failed deletion. Missing files are expected
// after manual cleanups and go to debug; rejected or failed deletions warn.
func (r Report) Log(log logrus.FieldLogger) {
	for _, res := range r.Failed() {
		entry := log.WithFields(logrus.Fields{
			"ref":  res.Ref,
			"path": res.Path,
		}).WithError(res.Err)
		if errors.Is(res.Err, fs.ErrNotExist) {
			entry.Debug("image file already gone")
			continue
		}
		entry.Warn("could not delete image file")
	}
}
