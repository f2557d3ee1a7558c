// Package config provides the suite file loader for bake.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the suite file version understood by the loader.
const SupportedVersion = "1"

var validNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	// Kinds lists the project kinds the loader accepts. Empty accepts any kind.
	Kinds []string
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader with the given logger and known project kinds.
func NewLoader(logger ports.Logger, kinds ...string) *Loader {
	return &Loader{Logger: logger, Kinds: kinds}
}

// DiscoverRoot walks up from cwd and returns the first directory holding a
// suite file.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigNotFound.Error()), "cwd", cwd)
	}

	currentDir := abs
	for {
		if _, err := os.Stat(filepath.Join(currentDir, domain.SuiteFileName)); err == nil {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

// Load discovers the suite file from cwd and returns the suite.
func (l *Loader) Load(cwd string) (*domain.Suite, error) {
	root, err := l.DiscoverRoot(cwd)
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(root, domain.SuiteFileName)
	var suitefile Suitefile
	if err := readAndUnmarshalYAML(configPath, &suitefile); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	if suitefile.Version != "" && suitefile.Version != SupportedVersion {
		l.Logger.Warn("unsupported suite file version", "version", suitefile.Version, "supported", SupportedVersion)
	}

	settings, err := resolveSettings(root, suitefile)
	if err != nil {
		return nil, err
	}

	modules, err := l.buildModules(suitefile.Modules)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	suite := domain.NewSuite(settings, toBlocks(suitefile.Parameters), modules...)
	if err := validateReferences(suite); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return suite, nil
}

func (l *Loader) buildModules(dtos map[string]ModuleDTO) ([]*domain.Module, error) {
	modules := make([]*domain.Module, 0, len(dtos))
	for name, dto := range dtos {
		if err := validateModuleName(name); err != nil {
			return nil, err
		}

		module := &domain.Module{Name: name, Parameters: toBlocks(dto.Parameters)}
		for projectName, p := range dto.Projects {
			project, err := l.buildProject(projectName, p)
			if err != nil {
				return nil, zerr.With(err, "module", name)
			}
			module.Projects = append(module.Projects, project)
		}
		modules = append(modules, module)
	}
	return modules, nil
}

func (l *Loader) buildProject(name string, dto ProjectDTO) (*domain.Project, error) {
	if !validNameRegex.MatchString(name) {
		return nil, zerr.With(domain.ErrInvalidName, "project", name)
	}

	kind := dto.Kind
	if kind == "" {
		kind = defaultKind(dto)
	}
	if len(l.Kinds) > 0 && !slices.Contains(l.Kinds, kind) {
		return nil, zerr.With(zerr.With(domain.ErrUnknownProjectKind, "kind", kind), "project", name)
	}

	refs := make([]domain.Reference, 0, len(dto.References))
	for _, raw := range dto.References {
		ref, err := domain.ParseReference(raw)
		if err != nil {
			return nil, zerr.With(err, "project", name)
		}
		refs = append(refs, ref)
	}

	return &domain.Project{
		Name:       name,
		Kind:       kind,
		Sources:    dto.Sources,
		Command:    dto.Command,
		Outputs:    canonicalizeStrings(dto.Outputs),
		References: refs,
		CopyTo:     dto.CopyTo,
		Parameters: toBlocks(dto.Parameters),
	}, nil
}

// defaultKind runs projects that declare a command and copies the rest.
func defaultKind(dto ProjectDTO) string {
	if len(dto.Command) > 0 {
		return "exec"
	}
	return "content"
}

func resolveSettings(root string, suitefile Suitefile) (domain.Settings, error) {
	settings := domain.DefaultSettings(root)
	if suitefile.TargetRoot != "" {
		settings.TargetRoot = resolvePath(root, suitefile.TargetRoot)
	}
	if c := suitefile.Cache; c.Dir != "" {
		settings.Cache.Dir = resolvePath(root, c.Dir)
	}
	if c := suitefile.Cache; c.Backend != "" {
		settings.Cache.Backend = c.Backend
	}
	if c := suitefile.Cache; c.Format != "" {
		settings.Cache.Format = c.Format
	}
	if c := suitefile.Cache; c.Memo != nil {
		settings.Cache.Memo = *c.Memo
	}

	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func validateReferences(suite *domain.Suite) error {
	for _, p := range suite.Projects() {
		for _, ref := range p.References {
			var ok bool
			switch ref.Kind {
			case domain.ReferenceModule:
				_, ok = suite.Module(ref.Module)
			case domain.ReferenceProject:
				_, ok = suite.Project(ref)
			}
			if !ok {
				err := zerr.With(domain.ErrMissingReference, "reference", ref.URI)
				return zerr.With(err, "project", p.Reference().URI)
			}
		}
	}
	return nil
}

// validateModuleName checks if the module name is reserved or contains invalid characters.
func validateModuleName(name string) error {
	if name == "all" {
		return zerr.With(domain.ErrReservedName, "module", name)
	}
	if !validNameRegex.MatchString(name) {
		return zerr.With(domain.ErrInvalidName, "module", name)
	}
	return nil
}

func resolvePath(root, configured string) string {
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Join(root, filepath.FromSlash(configured))
}

func toBlocks(in map[string]map[string]any) domain.ParameterBlocks {
	if in == nil {
		return nil
	}
	out := make(domain.ParameterBlocks, len(in))
	for name, block := range in {
		if block == nil {
			block = map[string]any{}
		}
		out[name] = domain.Parameters(block)
	}
	return out
}

func canonicalizeStrings(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered by the loader
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
