package marquee

import (
	"github.com/crimson-sun/marquee/internal/engine/compactor"
	"github.com/crimson-sun/marquee/internal/platform"
)

// PlatformClassifier decides which platforms are native or mobile.
type PlatformClassifier = platform.Classifier

type options struct {
	features  FeatureSet
	grouping  bool
	platforms platform.Classifier
	verbosity string
}

// Option configures a Resolver.
type Option func(*options)

// WithFeatures enables feature flags such as FeatureCustomTitle.
func WithFeatures(flags ...string) Option {
	return func(o *options) {
		o.features = append(o.features, flags...)
	}
}

// WithGrouping resolves titles as a grouping-details view would, which
// shows tree labels on every platform when FeatureGroupingTitleUI is on.
func WithGrouping(on bool) Option {
	return func(o *options) {
		o.grouping = on
	}
}

// WithPlatformClassifier replaces the built-in native/mobile platform lists.
func WithPlatformClassifier(c PlatformClassifier) Option {
	return func(o *options) {
		o.platforms = c
	}
}

// WithVerbosity sets message compaction: "minimal", "standard", "full".
// Default: "full", which leaves messages untouched.
func WithVerbosity(v string) Option {
	return func(o *options) {
		o.verbosity = v
	}
}

func defaultOptions() options {
	return options{
		platforms: platform.Default,
		verbosity: compactor.Full.String(),
	}
}
