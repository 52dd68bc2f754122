// Package platform classifies SDK platform identifiers.
package platform

// Classifier answers capability questions about a platform identifier.
// The empty string means the platform is unknown.
type Classifier interface {
	IsNative(platform string) bool
	IsMobile(platform string) bool
}

// Table is a Classifier backed by fixed membership sets.
type Table struct {
	Native map[string]bool
	Mobile map[string]bool
}

func (t Table) IsNative(platform string) bool { return platform != "" && t.Native[platform] }
func (t Table) IsMobile(platform string) bool { return platform != "" && t.Mobile[platform] }

// Default is the built-in platform policy.
var Default Classifier = Table{
	Native: set("cocoa", "objc", "native", "swift", "c"),
	Mobile: set(
		"android",
		"apple-ios",
		"capacitor",
		"cocoa",
		"cordova",
		"dart-flutter",
		"dotnet-maui",
		"dotnet-xamarin",
		"flutter",
		"ionic",
		"java-android",
		"javascript-capacitor",
		"javascript-cordova",
		"kotlin-android",
		"objc",
		"react-native",
		"swift",
		"unity",
	),
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
