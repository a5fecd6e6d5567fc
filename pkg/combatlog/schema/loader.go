package schema

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// MaxFileSize is the maximum allowed size for a schema file (1MB).
	MaxFileSize = 1 * 1024 * 1024

	// MaxEventCount is the maximum number of event schemas per file.
	MaxEventCount = 512

	// MaxFieldCount is the maximum number of fields per event schema.
	MaxFieldCount = 128

	// SupportedVersion is the currently supported schema file format
	// version.
	SupportedVersion = 1
)

// sanitizePathError removes the path from os.PathError so error messages
// don't leak filesystem paths.
func sanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}

// Load reads and parses a schema file from the given path.
// Returns an error if the file cannot be read, is too large, or fails
// validation. Non-regular files (FIFO, device, socket) are rejected.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file: %w", sanitizePathError(err))
	}
	defer f.Close()

	// Stat the descriptor, not the path, to avoid TOCTOU.
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat schema file: %w", sanitizePathError(err))
	}
	if !info.Mode().IsRegular() {
		return nil, errors.New("schema file must be a regular file")
	}
	if info.Size() == 0 {
		return nil, errors.New("schema file is empty")
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("schema file too large: %d bytes (max %d)", info.Size(), MaxFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", sanitizePathError(err))
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("schema file too large: %d bytes (max %d)", len(data), MaxFileSize)
	}

	return LoadBytes(data)
}

// LoadBytes parses a schema file from a byte slice.
func LoadBytes(data []byte) (*File, error) {
	if len(data) == 0 {
		return nil, errors.New("schema file is empty")
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("schema file too large: %d bytes (max %d)", len(data), MaxFileSize)
	}

	var sf File
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := sf.Validate(); err != nil {
		return nil, err
	}

	return &sf, nil
}

// Validate performs structural validation: supported version, at least
// one event, required fields, unique tags and field names, and a
// bool_tail no longer than the field list.
func (sf *File) Validate() error {
	if sf.Version != SupportedVersion {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (only version %d is supported)", sf.Version, SupportedVersion),
		}
	}
	if len(sf.Events) == 0 {
		return &ValidationError{
			Field:   "events",
			Message: "at least one event is required",
		}
	}
	if len(sf.Events) > MaxEventCount {
		return &ValidationError{
			Field:   "events",
			Message: fmt.Sprintf("too many events (%d), maximum allowed is %d", len(sf.Events), MaxEventCount),
		}
	}

	seenTags := make(map[string]int, len(sf.Events))

	for i, ev := range sf.Events {
		if ev.Tag == "" {
			return &EventError{Index: i, Field: "tag", Message: "tag is required"}
		}
		if strings.ContainsAny(ev.Tag, ", ") {
			return &EventError{Index: i, Tag: ev.Tag, Field: "tag", Message: "tag must not contain commas or spaces"}
		}
		if prev, exists := seenTags[ev.Tag]; exists {
			return &EventError{
				Index:   i,
				Tag:     ev.Tag,
				Field:   "tag",
				Message: fmt.Sprintf("duplicate tag (previously defined at event[%d])", prev),
			}
		}
		seenTags[ev.Tag] = i

		if len(ev.Fields) == 0 {
			return &EventError{Index: i, Tag: ev.Tag, Field: "fields", Message: "at least one field is required"}
		}
		if len(ev.Fields) > MaxFieldCount {
			return &EventError{
				Index:   i,
				Tag:     ev.Tag,
				Field:   "fields",
				Message: fmt.Sprintf("too many fields (%d), maximum allowed is %d", len(ev.Fields), MaxFieldCount),
			}
		}
		seenFields := make(map[string]struct{}, len(ev.Fields))
		for _, name := range ev.Fields {
			if name == "" {
				return &EventError{Index: i, Tag: ev.Tag, Field: "fields", Message: "field names must be non-empty"}
			}
			if _, dup := seenFields[name]; dup {
				return &EventError{
					Index:   i,
					Tag:     ev.Tag,
					Field:   "fields",
					Message: fmt.Sprintf("duplicate field name %q", name),
				}
			}
			seenFields[name] = struct{}{}
		}
		if ev.BoolTail < 0 || ev.BoolTail > len(ev.Fields) {
			return &EventError{
				Index:   i,
				Tag:     ev.Tag,
				Field:   "bool_tail",
				Message: fmt.Sprintf("bool_tail %d out of range (0..%d)", ev.BoolTail, len(ev.Fields)),
			}
		}
	}

	return nil
}
