package config

// Config is the typed view of a loaded configuration file.
type Config struct {
	Extractor *ExtractorSection
	Segmenter *SegmenterSection

	manager *Manager
}

// Default returns a configuration holding only defaults, with no backing file.
func Default() *Config {
	return &Config{
		Extractor: NewExtractorSection(),
		Segmenter: NewSegmenterSection(),
	}
}

// Load reads the configuration at path, or ~/.toolcall/config.yaml when path
// is empty. A missing file yields defaults.
func Load(path string) (*Config, error) {
	store, err := NewFileStore(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	manager := NewManager(store)
	for _, section := range []Section{cfg.Extractor, cfg.Segmenter} {
		if err := manager.RegisterSection(section); err != nil {
			return nil, err
		}
	}

	if err := manager.LoadAll(); err != nil {
		return nil, err
	}

	cfg.manager = manager
	return cfg, nil
}

// Manager returns the manager behind a loaded configuration, or nil for
// Default.
func (c *Config) Manager() *Manager {
	return c.manager
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.manager == nil {
		return nil
	}
	return c.manager.SaveAll()
}
