package panelctl

// SeedConfig lists the projects a seed file declares.
type SeedConfig struct {
	Projects []ProjectDef `yaml:"projects"`
}

// ProjectDef declares one project. Exactly one of Content and File may be
// set; with neither the sample compose file is used. File is resolved
// relative to the seed file.
type ProjectDef struct {
	Name    string `yaml:"name"`
	Content string `yaml:"content"`
	File    string `yaml:"file"`
	// Update rewrites an existing project whose content differs.
	Update bool `yaml:"update"`
	// Start runs "compose up -d" after the project is created or updated.
	Start bool `yaml:"start"`
}
