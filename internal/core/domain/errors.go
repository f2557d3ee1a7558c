package domain

import "go.trai.ch/zerr"

var (
	// ErrBuilderUnavailable is reported when a builder cannot run in the current environment.
	ErrBuilderUnavailable = zerr.New("builder unavailable")

	// ErrCannotExecuteBuilder is returned when a mandatory builder is unavailable or unresolved.
	ErrCannotExecuteBuilder = zerr.New("cannot execute builder")

	// ErrBuilderFailed wraps a failure raised by a builder's Run.
	ErrBuilderFailed = zerr.New("builder failed")

	// ErrBuilderBlocked is reported for builders whose prerequisites failed.
	ErrBuilderBlocked = zerr.New("builder blocked by failed prerequisite")

	// ErrResultsNotAvailable is returned when results are requested before a builder has completed.
	ErrResultsNotAvailable = zerr.New("builder results not available")

	// ErrBuilderNotRegistered is returned when a builder is not part of the build context.
	ErrBuilderNotRegistered = zerr.New("builder not registered")

	// ErrGraphFrozen is returned when builders are added outside of the planning phase.
	ErrGraphFrozen = zerr.New("build graph is frozen")

	// ErrUIDConflict is returned when two structurally different builders share a uid.
	ErrUIDConflict = zerr.New("builder uid conflict")

	// ErrCycleDetected is returned when a cycle is detected in the builder graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrPlanFailed is returned when a builder fails to register itself during planning.
	ErrPlanFailed = zerr.New("failed to plan builder")

	// ErrFingerprintFailed is returned when a builder's dependencies cannot be fingerprinted.
	ErrFingerprintFailed = zerr.New("failed to compute fingerprint")

	// ErrMissingOutput is returned when a builder did not produce a declared output.
	ErrMissingOutput = zerr.New("declared output was not produced")

	// ErrCopyFailed is returned when a file cannot be copied into the target root.
	ErrCopyFailed = zerr.New("failed to copy file")

	// ErrBuildExecutionFailed is returned when the build execution fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrNoTargetsSpecified is returned when no targets are specified for the run command.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrTargetNotFound is returned when a requested target names no module or project.
	ErrTargetNotFound = zerr.New("target not found")

	// ErrUnknownProjectKind is returned when a project kind has no registered factory.
	ErrUnknownProjectKind = zerr.New("unknown project kind")

	// ErrDuplicateProjectKind is returned when a project kind is registered twice.
	ErrDuplicateProjectKind = zerr.New("project kind already registered")

	// ErrMissingReference is returned when a project references an unknown module or project.
	ErrMissingReference = zerr.New("missing reference")

	// ErrInvalidReference is returned when a reference string cannot be parsed.
	ErrInvalidReference = zerr.New("invalid reference")

	// ErrInvalidName is returned when a module or project name is invalid.
	ErrInvalidName = zerr.New("name can only contain alphanumeric characters, hyphens and underscores")

	// ErrReservedName is returned when a module uses a reserved name (e.g., "all").
	ErrReservedName = zerr.New("module name 'all' is reserved")

	// ErrMissingCommand is returned when an exec project declares no command.
	ErrMissingCommand = zerr.New("exec project requires a command")

	// ErrInputNotFound is returned when a declared source pattern matches nothing.
	ErrInputNotFound = zerr.New("input not found")

	// ErrCacheEntryCorrupt is returned when a cache entry cannot be decoded.
	ErrCacheEntryCorrupt = zerr.New("cache entry is corrupt")

	// ErrCacheCreateFailed is returned when the cache directory cannot be created.
	ErrCacheCreateFailed = zerr.New("failed to create cache directory")

	// ErrCacheReadFailed is returned when a cache entry cannot be read.
	ErrCacheReadFailed = zerr.New("failed to read cache entry")

	// ErrCacheWriteFailed is returned when a cache entry cannot be written.
	ErrCacheWriteFailed = zerr.New("failed to write cache entry")

	// ErrCacheOpenFailed is returned when a cache backend cannot be opened.
	ErrCacheOpenFailed = zerr.New("failed to open cache")

	// ErrUnknownCacheBackend is returned when the configured cache backend is not supported.
	ErrUnknownCacheBackend = zerr.New("unknown cache backend, expected 'files' or 'badger'")

	// ErrUnknownSerializer is returned when the configured cache format is not supported.
	ErrUnknownSerializer = zerr.New("unknown cache format, expected 'msgpack' or 'json'")

	// ErrSerializeFailed is returned when a value cannot be serialized.
	ErrSerializeFailed = zerr.New("failed to serialize value")

	// ErrDeserializeFailed is returned when a value cannot be deserialized.
	ErrDeserializeFailed = zerr.New("failed to deserialize value")

	// ErrConfigNotFound is returned when no suite file is found in the directory tree.
	ErrConfigNotFound = zerr.New("could not find bake.yaml in the current directory or any parent")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidSettings is returned when suite settings are invalid.
	ErrInvalidSettings = zerr.New("invalid settings")

	// ErrExecutableNotFound is returned when a command's executable is not on PATH.
	ErrExecutableNotFound = zerr.New("executable not found")

	// ErrCommandFailed is returned when an external command exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")

	// ErrWatcherStartFailed is returned when the file watcher cannot be started.
	ErrWatcherStartFailed = zerr.New("failed to start file watcher")

	// ErrMetricsUnavailable is returned when metric totals are requested from
	// metrics that record without a reader.
	ErrMetricsUnavailable = zerr.New("metrics unavailable")
)
