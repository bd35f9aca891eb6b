package gbwt

import "github.com/sirupsen/logrus"

// Options carries the ambient, non-semantic tunables shared by the
// builder and the insertion engine: the sampling period and the
// diagnostic sink. Timing and verbosity levels are deliberately absent
// here (spec.md §1 places them with the CLI, outside this core).
type Options struct {
	SampleInterval uint64
	Log            *logrus.Entry
}

// Option configures an Options value; see WithSampleInterval and WithLogger.
type Option func(*Options)

// WithSampleInterval overrides DefaultSampleInterval.
func WithSampleInterval(interval uint64) Option {
	return func(o *Options) {
		if interval == 0 {
			interval = 1
		}
		o.SampleInterval = interval
	}
}

// WithLogger attaches a structured log sink used by the builder for a
// skipped over-long sequence and for worker lifecycle. A corrupt header
// on load is not logged; serialize.Load reports it through its returned
// error.
func WithLogger(log *logrus.Entry) Option {
	return func(o *Options) { o.Log = log }
}

// NewOptions builds an Options value from the given overrides, filling in
// defaults for anything left unset.
func NewOptions(opts ...Option) Options {
	o := Options{
		SampleInterval: DefaultSampleInterval,
		Log:            logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
