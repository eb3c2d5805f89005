package manifest

// Options carries the values injected into the derived manifests.
type Options struct {
	// BackgroundScript is the file name of the background script.
	BackgroundScript string
	// ExtensionID is the Firefox add-on id written to gecko.id.
	ExtensionID string
	// GeckoStrictMinVersion is written to gecko.strict_min_version when set.
	GeckoStrictMinVersion string
}

type chromeBackground struct {
	ServiceWorker string `json:"service_worker"`
}

type firefoxBackground struct {
	Scripts []string `json:"scripts"`
}

type browserSpecificSettings struct {
	Gecko geckoSettings `json:"gecko"`
}

type geckoSettings struct {
	ID                        string                    `json:"id"`
	StrictMinVersion          string                    `json:"strict_min_version,omitempty"`
	DataCollectionPermissions dataCollectionPermissions `json:"data_collection_permissions"`
}

type dataCollectionPermissions struct {
	Required []string `json:"required"`
}

// ForChrome derives the Chrome manifest: the background page becomes a
// service worker.
func ForChrome(base *Manifest, opts Options) (*Manifest, error) {
	m := base.Clone()
	if err := m.Set("background", chromeBackground{ServiceWorker: opts.BackgroundScript}); err != nil {
		return nil, err
	}
	return m, nil
}

// ForFirefox derives the Firefox manifest: background scripts instead of a
// service worker, plus gecko settings that declare the add-on id and that no
// data collection is required. Any existing browser_specific_settings are
// replaced.
func ForFirefox(base *Manifest, opts Options) (*Manifest, error) {
	m := base.Clone()
	if err := m.Set("background", firefoxBackground{Scripts: []string{opts.BackgroundScript}}); err != nil {
		return nil, err
	}
	settings := browserSpecificSettings{
		Gecko: geckoSettings{
			ID:               opts.ExtensionID,
			StrictMinVersion: opts.GeckoStrictMinVersion,
			DataCollectionPermissions: dataCollectionPermissions{
				Required: []string{"none"},
			},
		},
	}
	if err := m.Set("browser_specific_settings", settings); err != nil {
		return nil, err
	}
	return m, nil
}
